package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"checkpoint-service/internal/model"
	"checkpoint-service/internal/repository"
)

const recentActivityLimit = 20

// TrackingService serves the live-view reads and the single manual scan
// write used by the dashboard's simulator controls.
type TrackingService struct {
	db             *gorm.DB
	vehicleRepo    *repository.VehicleRepository
	checkpointRepo *repository.CheckpointRepository
	scanLogRepo    *repository.ScanLogRepository
	analyticsRepo  *repository.AnalyticsRepository
	terminalSuffix string
}

func NewTrackingService(
	db *gorm.DB,
	vehicleRepo *repository.VehicleRepository,
	checkpointRepo *repository.CheckpointRepository,
	scanLogRepo *repository.ScanLogRepository,
	analyticsRepo *repository.AnalyticsRepository,
	terminalSuffix string,
) *TrackingService {
	return &TrackingService{
		db:             db,
		vehicleRepo:    vehicleRepo,
		checkpointRepo: checkpointRepo,
		scanLogRepo:    scanLogRepo,
		analyticsRepo:  analyticsRepo,
		terminalSuffix: terminalSuffix,
	}
}

type LiveStatus struct {
	CurrentPositions []repository.LivePositionRow `json:"current_positions"`
	RecentActivity   []repository.LivePositionRow `json:"recent_activity"`
	LaneStatus       []repository.LaneStatusRow   `json:"lane_status"`
}

// Live assembles the live-tracking view: latest position per vehicle, the
// most recent scans, and per-lane activity over the trailing hour.
func (s *TrackingService) Live(ctx context.Context) (*LiveStatus, error) {
	positions, err := s.scanLogRepo.LatestPositions(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.scanLogRepo.RecentActivity(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	lanes, err := s.scanLogRepo.LaneActivity(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		return nil, err
	}

	return &LiveStatus{
		CurrentPositions: positions,
		RecentActivity:   recent,
		LaneStatus:       lanes,
	}, nil
}

type VehicleOverview struct {
	Vehicles  []repository.VehicleOverviewRow `json:"vehicles"`
	LaneStats []repository.LaneCount          `json:"lane_stats"`
	TypeStats []repository.TypeCount          `json:"type_stats"`
}

func (s *TrackingService) VehiclesOverview(ctx context.Context) (*VehicleOverview, error) {
	vehicles, err := s.vehicleRepo.ListOverview(ctx)
	if err != nil {
		return nil, err
	}

	laneStats, err := s.analyticsRepo.VehiclesByLane(ctx)
	if err != nil {
		return nil, err
	}

	typeStats, err := s.analyticsRepo.VehiclesByType(ctx)
	if err != nil {
		return nil, err
	}

	return &VehicleOverview{
		Vehicles:  vehicles,
		LaneStats: laneStats,
		TypeStats: typeStats,
	}, nil
}

type ManualScanResult struct {
	RFID      string    `json:"rfid"`
	CPID      string    `json:"cpid"`
	ScannedAt time.Time `json:"timestamp"`
}

// RecordScan appends one scan stamped now. Unlike batch ingest, the dummy
// decision here looks at the vehicle's full scan history: a dummy row is
// written only when no scan of the vehicle has ever reached the terminal
// checkpoint.
func (s *TrackingService) RecordScan(ctx context.Context, rfid, cpid string) (*ManualScanResult, error) {
	rfid = strings.TrimSpace(rfid)
	cpid = strings.TrimSpace(cpid)
	if rfid == "" || cpid == "" {
		return nil, ErrInvalidInput
	}

	scannedAt := time.Now().Truncate(time.Second)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vehicles := repository.NewVehicleRepository(tx)
		checkpoints := repository.NewCheckpointRepository(tx)
		logs := repository.NewScanLogRepository(tx)

		known, err := vehicles.Exists(ctx, rfid)
		if err != nil {
			return fmt.Errorf("%w: check rfid: %v", ErrStoreUnavailable, err)
		}
		if !known {
			return fmt.Errorf("%w: rfid %s", ErrNotFound, rfid)
		}

		known, err = checkpoints.Exists(ctx, cpid)
		if err != nil {
			return fmt.Errorf("%w: check cpid: %v", ErrStoreUnavailable, err)
		}
		if !known {
			return fmt.Errorf("%w: cpid %s", ErrNotFound, cpid)
		}

		if err := logs.Append(ctx, &model.ScanLog{RFID: rfid, CPID: cpid, ScannedAt: scannedAt}); err != nil {
			return fmt.Errorf("%w: append scan log: %v", ErrStoreUnavailable, err)
		}

		completed, err := logs.HasTerminalScan(ctx, rfid, s.terminalSuffix)
		if err != nil {
			return fmt.Errorf("%w: check terminal scan: %v", ErrStoreUnavailable, err)
		}
		if !completed {
			dummy := []model.DummyScanLog{{RFID: rfid, CPID: cpid, ScannedAt: scannedAt}}
			if err := logs.AppendDummy(ctx, dummy); err != nil {
				return fmt.Errorf("%w: append dummy log: %v", ErrStoreUnavailable, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ManualScanResult{RFID: rfid, CPID: cpid, ScannedAt: scannedAt}, nil
}

// FilterLogs searches the scan log by registry attributes, newest first.
func (s *TrackingService) FilterLogs(ctx context.Context, filter repository.LogFilter) ([]repository.FilteredLogRow, error) {
	return s.scanLogRepo.Filter(ctx, filter, 50)
}

func (s *TrackingService) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	return s.vehicleRepo.DistinctFilterOptions(ctx)
}
