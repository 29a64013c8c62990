package booster

import (
	"boostlend/core"
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
)

type booster struct {
	TokenID   uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT:false"`
	Owner     string `sql:"size:42;index"`
	Type      uint8
	Action    uint8
	UpdatedAt time.Time
}

func (booster) TableName() string {
	return "boosters"
}

type boosterStore struct {
	db *db.DB
}

// New new booster store
func New(db *db.DB) core.BoosterStore {
	return &boosterStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(booster{})
		if err := tx.AutoMigrate(booster{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *boosterStore) Save(ctx context.Context, tx *db.DB, b *core.Booster) error {
	return tx.Update().Save(&booster{
		TokenID: b.ID,
		Owner:   b.Owner.Hex(),
		Type:    uint8(b.Type),
		Action:  uint8(b.Action),
	}).Error
}

func (s *boosterStore) All(ctx context.Context) ([]*core.Booster, error) {
	var rows []*booster
	if err := s.db.View().Order("token_id").Find(&rows).Error; err != nil {
		return nil, err
	}

	boosters := make([]*core.Booster, 0, len(rows))
	for _, row := range rows {
		boosters = append(boosters, &core.Booster{
			ID:     row.TokenID,
			Owner:  common.HexToAddress(row.Owner),
			Type:   core.BoosterType(row.Type),
			Action: core.BoosterAction(row.Action),
		})
	}

	return boosters, nil
}
