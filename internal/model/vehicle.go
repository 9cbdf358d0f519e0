package model

import (
	"strings"
	"time"
)

type VehicleType string

const (
	VehicleTypeA VehicleType = "A"
	VehicleTypeB VehicleType = "B"
)

type Vehicle struct {
	RFID      string      `gorm:"column:rfid;type:varchar(30);primaryKey" json:"rfid"`
	BaNo      string      `gorm:"column:ba_no;type:varchar(30)" json:"ba_no"`
	Type      VehicleType `gorm:"column:type_of_veh;type:varchar(5);not null;default:B" json:"type_of_veh"`
	Unit      string      `gorm:"type:varchar(20)" json:"unit"`
	Formation string      `gorm:"type:varchar(20)" json:"formation"`
	Lane      string      `gorm:"type:varchar(5)" json:"lane"`
	TripCount int         `gorm:"column:no_of_trps" json:"no_of_trps"`
	Purpose   string      `gorm:"type:varchar(30)" json:"purpose"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicle_details"
}

// DeriveVehicleType classifies a vehicle by its BA number: type A when the
// fifth character is an X (case-insensitive), type B otherwise.
func DeriveVehicleType(baNo string) VehicleType {
	if len(baNo) >= 5 && strings.EqualFold(string(baNo[4]), "X") {
		return VehicleTypeA
	}
	return VehicleTypeB
}
