package reserve

import (
	"boostlend/core"
	"boostlend/pkg/number"
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// uint256 values need 78 digits, more than a mysql decimal column holds
type reserve struct {
	Asset    string `sql:"size:42;PRIMARY_KEY"`
	Symbol   string `sql:"size:32"`
	Vault    string `sql:"size:42"`
	Strategy string `sql:"size:32"`

	LiquidityIndex            decimal.Decimal `sql:"type:varchar(80)"`
	VariableBorrowIndex       decimal.Decimal `sql:"type:varchar(80)"`
	CurrentLiquidityRate      decimal.Decimal `sql:"type:varchar(80)"`
	CurrentVariableBorrowRate decimal.Decimal `sql:"type:varchar(80)"`
	CurrentStableBorrowRate   decimal.Decimal `sql:"type:varchar(80)"`
	AverageStableBorrowRate   decimal.Decimal `sql:"type:varchar(80)"`
	TotalPrincipalStableDebt  decimal.Decimal `sql:"type:varchar(80)"`
	ScaledTotalVariableDebt   decimal.Decimal `sql:"type:varchar(80)"`
	ScaledTotalSupply         decimal.Decimal `sql:"type:varchar(80)"`

	ReserveFactor                 uint64
	LastUpdateTimestamp           int64
	StableDebtLastUpdateTimestamp int64

	Active          bool
	Frozen          bool
	StableBorrowing bool
	YieldBoost      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (reserve) TableName() string {
	return "reserves"
}

func fromReserve(r *core.Reserve) *reserve {
	return &reserve{
		Asset:                         r.Asset.Hex(),
		Symbol:                        r.Symbol,
		Vault:                         r.Vault.Hex(),
		Strategy:                      r.Strategy,
		LiquidityIndex:                number.FromUint256(r.LiquidityIndex),
		VariableBorrowIndex:           number.FromUint256(r.VariableBorrowIndex),
		CurrentLiquidityRate:          number.FromUint256(r.CurrentLiquidityRate),
		CurrentVariableBorrowRate:     number.FromUint256(r.CurrentVariableBorrowRate),
		CurrentStableBorrowRate:       number.FromUint256(r.CurrentStableBorrowRate),
		AverageStableBorrowRate:       number.FromUint256(r.AverageStableBorrowRate),
		TotalPrincipalStableDebt:      number.FromUint256(r.TotalPrincipalStableDebt),
		ScaledTotalVariableDebt:       number.FromUint256(r.ScaledTotalVariableDebt),
		ScaledTotalSupply:             number.FromUint256(r.ScaledTotalSupply),
		ReserveFactor:                 r.ReserveFactor,
		LastUpdateTimestamp:           r.LastUpdateTimestamp,
		StableDebtLastUpdateTimestamp: r.StableDebtLastUpdateTimestamp,
		Active:                        r.Active,
		Frozen:                        r.Frozen,
		StableBorrowing:               r.StableBorrowing,
		YieldBoost:                    r.YieldBoost,
	}
}

func (row *reserve) toReserve() (*core.Reserve, error) {
	var ints number.Uint256Reader
	r := &core.Reserve{
		Asset:                         common.HexToAddress(row.Asset),
		Symbol:                        row.Symbol,
		Vault:                         common.HexToAddress(row.Vault),
		Strategy:                      row.Strategy,
		LiquidityIndex:                ints.Read(row.LiquidityIndex),
		VariableBorrowIndex:           ints.Read(row.VariableBorrowIndex),
		CurrentLiquidityRate:          ints.Read(row.CurrentLiquidityRate),
		CurrentVariableBorrowRate:     ints.Read(row.CurrentVariableBorrowRate),
		CurrentStableBorrowRate:       ints.Read(row.CurrentStableBorrowRate),
		AverageStableBorrowRate:       ints.Read(row.AverageStableBorrowRate),
		TotalPrincipalStableDebt:      ints.Read(row.TotalPrincipalStableDebt),
		ScaledTotalVariableDebt:       ints.Read(row.ScaledTotalVariableDebt),
		ScaledTotalSupply:             ints.Read(row.ScaledTotalSupply),
		ReserveFactor:                 row.ReserveFactor,
		LastUpdateTimestamp:           row.LastUpdateTimestamp,
		StableDebtLastUpdateTimestamp: row.StableDebtLastUpdateTimestamp,
		Active:                        row.Active,
		Frozen:                        row.Frozen,
		StableBorrowing:               row.StableBorrowing,
		YieldBoost:                    row.YieldBoost,
	}

	if err := ints.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

type reserveStore struct {
	db *db.DB
}

// New new reserve store
func New(db *db.DB) core.ReserveStore {
	return &reserveStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(reserve{})
		if err := tx.AutoMigrate(reserve{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *reserveStore) Save(ctx context.Context, tx *db.DB, r *core.Reserve) error {
	return tx.Update().Save(fromReserve(r)).Error
}

func (s *reserveStore) Find(ctx context.Context, asset common.Address) (*core.Reserve, error) {
	var row reserve
	if err := s.db.View().Where("asset=?", asset.Hex()).First(&row).Error; err != nil {
		return nil, err
	}

	return row.toReserve()
}

func (s *reserveStore) All(ctx context.Context) ([]*core.Reserve, error) {
	var rows []*reserve
	if err := s.db.View().Order("asset").Find(&rows).Error; err != nil {
		return nil, err
	}

	reserves := make([]*core.Reserve, 0, len(rows))
	for _, row := range rows {
		r, err := row.toReserve()
		if err != nil {
			return nil, err
		}
		reserves = append(reserves, r)
	}

	return reserves, nil
}
