package event

import (
	"boostlend/core"
	"context"

	"github.com/fox-one/pkg/store/db"
)

type eventStore struct {
	db *db.DB
}

// New new event store
func New(db *db.DB) core.EventStore {
	return &eventStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.EventRecord{})
		if err := tx.AutoMigrate(core.EventRecord{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *eventStore) Create(ctx context.Context, tx *db.DB, records []*core.EventRecord) error {
	for _, record := range records {
		if err := tx.Update().Create(record).Error; err != nil {
			return err
		}
	}

	return nil
}

func (s *eventStore) List(ctx context.Context, fromID int64, limit int) ([]*core.EventRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	var records []*core.EventRecord
	if err := s.db.View().Where("id > ?", fromID).Order("id ASC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (s *eventStore) ListByTrace(ctx context.Context, traceID string) ([]*core.EventRecord, error) {
	var records []*core.EventRecord
	if err := s.db.View().Where("trace_id=?", traceID).Order("seq ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}
