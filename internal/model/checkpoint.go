package model

type Checkpoint struct {
	CPID string `gorm:"column:cpid;type:varchar(30);primaryKey" json:"cpid"`
	Lane string `gorm:"type:varchar(5);index" json:"lane"`
}

func (Checkpoint) TableName() string {
	return "checkpoints"
}
