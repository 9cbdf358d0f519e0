package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"checkpoint-service/internal/model"
	"checkpoint-service/internal/repository"
	"checkpoint-service/internal/scanfile"
)

var (
	ErrNoFile           = errors.New("no file uploaded")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
)

type UploadSummary struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// IngestService runs the upload pipeline: parse, validate against the
// registry snapshot, classify, persist, derive the dummy log. One upload is
// one transaction; row-level problems are counted and never abort the batch.
type IngestService struct {
	db             *gorm.DB
	terminalSuffix string
	log            zerolog.Logger
}

func NewIngestService(db *gorm.DB, terminalSuffix string, log zerolog.Logger) *IngestService {
	return &IngestService{
		db:             db,
		terminalSuffix: terminalSuffix,
		log:            log,
	}
}

func (s *IngestService) Ingest(ctx context.Context, file io.Reader) (*UploadSummary, error) {
	batch, err := scanfile.Parse(file)
	if err != nil {
		return nil, err
	}

	batchID := uuid.New()
	summary := &UploadSummary{}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vehicles := repository.NewVehicleRepository(tx)
		checkpoints := repository.NewCheckpointRepository(tx)
		logs := repository.NewScanLogRepository(tx)

		// Registry snapshot for the whole batch. Concurrent uploads each
		// take their own and may race on classification; see DESIGN.md.
		validRFIDs, err := vehicles.ListRFIDs(ctx)
		if err != nil {
			return fmt.Errorf("%w: list rfids: %v", ErrStoreUnavailable, err)
		}

		// Checkpoint snapshot taken the same way. A row naming an unknown
		// checkpoint is a skip, not a failed insert aborting the batch.
		validCPIDs, err := checkpoints.ListCPIDs(ctx)
		if err != nil {
			return fmt.Errorf("%w: list cpids: %v", ErrStoreUnavailable, err)
		}

		acc := newBatchAccumulator()
		for _, row := range batch.Rows {
			skipReason, err := s.processRow(ctx, vehicles, logs, validRFIDs, validCPIDs, row, acc)
			if err != nil {
				return err
			}
			if skipReason != "" {
				summary.Skipped++
				s.log.Debug().
					Stringer("batch_id", batchID).
					Str("rfid", row.RFID).
					Str("reason", skipReason).
					Msg("row skipped")
				continue
			}
			summary.Inserted++
		}

		dummies := deriveDummyLogs(acc, s.terminalSuffix)
		if err := logs.AppendDummy(ctx, dummies); err != nil {
			return fmt.Errorf("%w: append dummy logs: %v", ErrStoreUnavailable, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Stringer("batch_id", batchID).
		Int("inserted", summary.Inserted).
		Int("skipped", summary.Skipped).
		Msg("batch ingested")

	return summary, nil
}

// processRow applies the per-row pipeline. A non-empty skip reason is a
// soft failure for this row only; a returned error is store-level and
// rolls back the batch.
func (s *IngestService) processRow(
	ctx context.Context,
	vehicles *repository.VehicleRepository,
	logs *repository.ScanLogRepository,
	validRFIDs map[string]struct{},
	validCPIDs map[string]struct{},
	row scanfile.Row,
	acc *batchAccumulator,
) (string, error) {
	rfid := strings.TrimSpace(row.RFID)
	cpid := strings.TrimSpace(row.CPID)

	scannedAt, ok := parseTimestamp(row.Timestamp)
	if !ok {
		return "unparseable timestamp", nil
	}

	if _, ok := validRFIDs[rfid]; !ok {
		return "rfid not registered", nil
	}

	if _, ok := validCPIDs[cpid]; !ok {
		return "cpid not registered", nil
	}

	baNo, found, err := vehicles.GetBaNo(ctx, rfid)
	if err != nil {
		return "", fmt.Errorf("%w: fetch ba_no: %v", ErrStoreUnavailable, err)
	}
	if !found {
		return "registry record missing", nil
	}

	if err := vehicles.UpdateType(ctx, rfid, model.DeriveVehicleType(baNo)); err != nil {
		return "", fmt.Errorf("%w: update vehicle type: %v", ErrStoreUnavailable, err)
	}

	entry := &model.ScanLog{RFID: rfid, CPID: cpid, ScannedAt: scannedAt}
	if err := logs.Append(ctx, entry); err != nil {
		return "", fmt.Errorf("%w: append scan log: %v", ErrStoreUnavailable, err)
	}

	acc.add(rfid, cpid, scannedAt)
	return "", nil
}

type scanEvent struct {
	cpid      string
	scannedAt time.Time
}

// batchAccumulator collects the accepted scans of one upload, keyed by
// rfid with insertion order preserved on both levels.
type batchAccumulator struct {
	order []string
	scans map[string][]scanEvent
}

func newBatchAccumulator() *batchAccumulator {
	return &batchAccumulator{scans: map[string][]scanEvent{}}
}

func (a *batchAccumulator) add(rfid, cpid string, scannedAt time.Time) {
	if _, seen := a.scans[rfid]; !seen {
		a.order = append(a.order, rfid)
	}
	a.scans[rfid] = append(a.scans[rfid], scanEvent{cpid: cpid, scannedAt: scannedAt})
}

// deriveDummyLogs emits one dummy entry per accepted scan of every vehicle
// whose batch-local scan set never reached the terminal suffix. Vehicles
// with at least one terminal scan produce nothing. Pure function of the
// accumulator; prior batches are not consulted.
func deriveDummyLogs(acc *batchAccumulator, terminalSuffix string) []model.DummyScanLog {
	var entries []model.DummyScanLog
	for _, rfid := range acc.order {
		events := acc.scans[rfid]
		if hasTerminal(events, terminalSuffix) {
			continue
		}
		for _, event := range events {
			entries = append(entries, model.DummyScanLog{
				RFID:      rfid,
				CPID:      event.cpid,
				ScannedAt: event.scannedAt,
			})
		}
	}
	return entries
}

func hasTerminal(events []scanEvent, suffix string) bool {
	for _, event := range events {
		if strings.HasSuffix(event.cpid, suffix) {
			return true
		}
	}
	return false
}
