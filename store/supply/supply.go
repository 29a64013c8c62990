package supply

import (
	"boostlend/core"
	"boostlend/pkg/number"
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type supply struct {
	Asset         string          `sql:"size:42;PRIMARY_KEY"`
	Account       string          `sql:"size:42;PRIMARY_KEY"`
	ScaledBalance decimal.Decimal `sql:"type:varchar(80)"`
	LastIndex     decimal.Decimal `sql:"type:varchar(80)"`
	UpdatedAt     time.Time
}

func (supply) TableName() string {
	return "supplies"
}

type supplyStore struct {
	db *db.DB
}

// New new supply store
func New(db *db.DB) core.SupplyStore {
	return &supplyStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(supply{})
		if err := tx.AutoMigrate(supply{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *supplyStore) Save(ctx context.Context, tx *db.DB, d *core.Supply) error {
	return tx.Update().Save(&supply{
		Asset:         d.Asset.Hex(),
		Account:       d.User.Hex(),
		ScaledBalance: number.FromUint256(d.ScaledBalance),
		LastIndex:     number.FromUint256(d.LastIndex),
	}).Error
}

func (s *supplyStore) All(ctx context.Context) ([]*core.Supply, error) {
	var rows []*supply
	if e := s.db.View().Where("scaled_balance <> ?", "0").Find(&rows).Error; e != nil {
		return nil, e
	}

	var ints number.Uint256Reader
	supplies := make([]*core.Supply, 0, len(rows))
	for _, row := range rows {
		supplies = append(supplies, &core.Supply{
			Asset:         common.HexToAddress(row.Asset),
			User:          common.HexToAddress(row.Account),
			ScaledBalance: ints.Read(row.ScaledBalance),
			LastIndex:     ints.Read(row.LastIndex),
		})
	}

	return supplies, ints.Err()
}
