package repository

import (
	"context"

	"gorm.io/gorm"

	"checkpoint-service/internal/model"
)

type CheckpointRepository struct {
	db *gorm.DB
}

func NewCheckpointRepository(db *gorm.DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

// ListCPIDs returns the known-checkpoint snapshot a batch validates its
// rows against, taken once per upload like the rfid snapshot.
func (r *CheckpointRepository) ListCPIDs(ctx context.Context) (map[string]struct{}, error) {
	var cpids []string
	if err := r.db.WithContext(ctx).
		Model(&model.Checkpoint{}).
		Pluck("cpid", &cpids).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(cpids))
	for _, cpid := range cpids {
		set[cpid] = struct{}{}
	}
	return set, nil
}

func (r *CheckpointRepository) Exists(ctx context.Context, cpid string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Checkpoint{}).
		Where("cpid = ?", cpid).
		Count(&count).Error
	return count > 0, err
}

func (r *CheckpointRepository) ListLanes(ctx context.Context) ([]string, error) {
	var lanes []string
	err := r.db.WithContext(ctx).
		Model(&model.Checkpoint{}).
		Distinct("lane").
		Order("lane").
		Pluck("lane", &lanes).Error
	if err != nil {
		return nil, err
	}
	return lanes, nil
}
