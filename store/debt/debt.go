package debt

import (
	"boostlend/core"
	"boostlend/pkg/number"
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type variableDebt struct {
	Asset         string          `sql:"size:42;PRIMARY_KEY"`
	Account       string          `sql:"size:42;PRIMARY_KEY"`
	ScaledBalance decimal.Decimal `sql:"type:varchar(80)"`
	LastIndex     decimal.Decimal `sql:"type:varchar(80)"`
	UpdatedAt     time.Time
}

func (variableDebt) TableName() string {
	return "variable_debts"
}

type stableDebt struct {
	Asset       string          `sql:"size:42;PRIMARY_KEY"`
	Account     string          `sql:"size:42;PRIMARY_KEY"`
	Principal   decimal.Decimal `sql:"type:varchar(80)"`
	Rate        decimal.Decimal `sql:"type:varchar(80)"`
	LastUpdated int64
	UpdatedAt   time.Time
}

func (stableDebt) TableName() string {
	return "stable_debts"
}

type debtStore struct {
	db *db.DB
}

// New new debt store
func New(db *db.DB) core.DebtStore {
	return &debtStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		for _, model := range []interface{}{variableDebt{}, stableDebt{}} {
			tx := db.Update().Model(model)
			if err := tx.AutoMigrate(model).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *debtStore) SaveVariable(ctx context.Context, tx *db.DB, d *core.VariableDebt) error {
	return tx.Update().Save(&variableDebt{
		Asset:         d.Asset.Hex(),
		Account:       d.User.Hex(),
		ScaledBalance: number.FromUint256(d.ScaledBalance),
		LastIndex:     number.FromUint256(d.LastIndex),
	}).Error
}

func (s *debtStore) SaveStable(ctx context.Context, tx *db.DB, d *core.StableDebt) error {
	return tx.Update().Save(&stableDebt{
		Asset:       d.Asset.Hex(),
		Account:     d.User.Hex(),
		Principal:   number.FromUint256(d.Principal),
		Rate:        number.FromUint256(d.Rate),
		LastUpdated: d.LastUpdated,
	}).Error
}

func (s *debtStore) AllVariable(ctx context.Context) ([]*core.VariableDebt, error) {
	var rows []*variableDebt
	if err := s.db.View().Where("scaled_balance <> ?", "0").Find(&rows).Error; err != nil {
		return nil, err
	}

	var ints number.Uint256Reader
	debts := make([]*core.VariableDebt, 0, len(rows))
	for _, row := range rows {
		debts = append(debts, &core.VariableDebt{
			Asset:         common.HexToAddress(row.Asset),
			User:          common.HexToAddress(row.Account),
			ScaledBalance: ints.Read(row.ScaledBalance),
			LastIndex:     ints.Read(row.LastIndex),
		})
	}

	return debts, ints.Err()
}

func (s *debtStore) AllStable(ctx context.Context) ([]*core.StableDebt, error) {
	var rows []*stableDebt
	if err := s.db.View().Where("principal <> ?", "0").Find(&rows).Error; err != nil {
		return nil, err
	}

	var ints number.Uint256Reader
	debts := make([]*core.StableDebt, 0, len(rows))
	for _, row := range rows {
		debts = append(debts, &core.StableDebt{
			Asset:       common.HexToAddress(row.Asset),
			User:        common.HexToAddress(row.Account),
			Principal:   ints.Read(row.Principal),
			Rate:        ints.Read(row.Rate),
			LastUpdated: row.LastUpdated,
		})
	}

	return debts, ints.Err()
}
