package eventstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/clivox/backend/internal/eventsourcing"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the database-backed event store. Every append runs in one
// transaction holding a row lock on the stream, so sequences stay gap-free
// and optimistic-concurrency checks cannot race.
type GormStore struct {
	db         *gorm.DB
	serializer *eventsourcing.Serializer
	logger     *zap.Logger

	mu            sync.RWMutex
	materializers map[string]eventsourcing.Materializer
	now           func() time.Time
}

// NewGormStore creates a store on the given database connection
func NewGormStore(db *gorm.DB, serializer *eventsourcing.Serializer, logger *zap.Logger) *GormStore {
	return &GormStore{
		db:            db,
		serializer:    serializer,
		logger:        logger,
		materializers: make(map[string]eventsourcing.Materializer),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RegisterMaterializer installs the snapshot fold for one aggregate kind
func (s *GormStore) RegisterMaterializer(kind string, m eventsourcing.Materializer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materializers[kind] = m
}

// SetClock overrides the append timestamp source. Test hook.
func (s *GormStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Migrate creates the event store tables
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(Models()...)
}

// StartStream implements eventsourcing.Store
func (s *GormStore) StartStream(ctx context.Context, kind string, streamID uuid.UUID, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return shared.ErrInvalidInput
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stream := StreamModel{StreamID: streamID, Kind: kind, CreatedAt: s.clock()}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stream)
		if result.Error != nil {
			return fmt.Errorf("creating stream %s: %w", streamID, result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrAlreadyExists
		}
		return s.appendTx(tx, kind, streamID, 0, events)
	})
}

// Append implements eventsourcing.Store
func (s *GormStore) Append(ctx context.Context, streamID uuid.UUID, expectedVersion int64, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return shared.ErrInvalidInput
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		// SQLite has no SELECT FOR UPDATE; its transactions serialize
		// writers anyway, and the unique sequence index catches the rest.
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var stream StreamModel
		err := query.First(&stream, "stream_id = ?", streamID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrStreamNotFound
			}
			return fmt.Errorf("locking stream %s: %w", streamID, err)
		}

		var currentVersion int64
		if err := tx.Model(&EventModel{}).
			Where("stream_id = ?", streamID).
			Select("COALESCE(MAX(sequence), 0)").
			Scan(&currentVersion).Error; err != nil {
			return fmt.Errorf("reading stream version %s: %w", streamID, err)
		}

		if expectedVersion != eventsourcing.AnyVersion && currentVersion != expectedVersion {
			s.logger.Warn("concurrent append rejected",
				zap.String("stream_id", streamID.String()),
				zap.Int64("expected_version", expectedVersion),
				zap.Int64("current_version", currentVersion))
			return shared.ErrConcurrencyConflict
		}

		return s.appendTx(tx, stream.Kind, streamID, currentVersion, events)
	})
}

func (s *GormStore) appendTx(tx *gorm.DB, kind string, streamID uuid.UUID, currentVersion int64, events []shared.DomainEvent) error {
	occurredOn := s.clock()
	records := make([]EventModel, 0, len(events))
	for i, event := range events {
		data, err := s.serializer.Serialize(event)
		if err != nil {
			return fmt.Errorf("serializing %s: %w", event.EventName(), err)
		}
		records = append(records, EventModel{
			StreamID:   streamID,
			Sequence:   currentVersion + int64(i) + 1,
			EventName:  event.EventName(),
			Data:       data,
			OccurredOn: occurredOn,
		})
	}
	if err := tx.Create(&records).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConcurrencyConflict
		}
		return fmt.Errorf("appending to stream %s: %w", streamID, err)
	}
	return s.refreshSnapshotTx(tx, kind, streamID)
}

func (s *GormStore) refreshSnapshotTx(tx *gorm.DB, kind string, streamID uuid.UUID) error {
	s.mu.RLock()
	materialize, ok := s.materializers[kind]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	stream, err := s.loadStreamTx(tx, streamID)
	if err != nil {
		return err
	}
	data, deleted, err := materialize(stream)
	if err != nil {
		return fmt.Errorf("materializing %s snapshot: %w", kind, err)
	}

	snapshot := SnapshotModel{
		StreamID:  streamID,
		Kind:      kind,
		Version:   int64(len(stream)),
		Deleted:   deleted,
		Data:      data,
		UpdatedAt: s.clock(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stream_id"}},
		UpdateAll: true,
	}).Create(&snapshot).Error
}

// LoadStream implements eventsourcing.Store
func (s *GormStore) LoadStream(ctx context.Context, streamID uuid.UUID) ([]eventsourcing.StoredEvent, error) {
	return s.loadStreamTx(s.db.WithContext(ctx), streamID)
}

func (s *GormStore) loadStreamTx(tx *gorm.DB, streamID uuid.UUID) ([]eventsourcing.StoredEvent, error) {
	var records []EventModel
	if err := tx.Where("stream_id = ?", streamID).
		Order("sequence ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("loading stream %s: %w", streamID, err)
	}

	stream := make([]eventsourcing.StoredEvent, 0, len(records))
	for _, record := range records {
		event, err := s.serializer.Deserialize(record.EventName, record.Data)
		if err != nil {
			return nil, err
		}
		stream = append(stream, eventsourcing.StoredEvent{
			Event: event,
			Envelope: eventsourcing.Envelope{
				AggregateID: record.StreamID,
				EventName:   record.EventName,
				Sequence:    record.Sequence,
				OccurredOn:  record.OccurredOn,
			},
		})
	}
	return stream, nil
}

// QuerySnapshots implements eventsourcing.Store
func (s *GormStore) QuerySnapshots(ctx context.Context, kind string) ([]eventsourcing.Snapshot, error) {
	var records []SnapshotModel
	if err := s.db.WithContext(ctx).
		Where("kind = ? AND deleted = ?", kind, false).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("querying %s snapshots: %w", kind, err)
	}

	snapshots := make([]eventsourcing.Snapshot, 0, len(records))
	for _, record := range records {
		snapshots = append(snapshots, eventsourcing.Snapshot{
			StreamID: record.StreamID,
			Kind:     record.Kind,
			Version:  record.Version,
			Deleted:  record.Deleted,
			Data:     record.Data,
		})
	}
	return snapshots, nil
}

func (s *GormStore) clock() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}
