package wallet

import (
	"boostlend/core"
	"boostlend/pkg/number"
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type balance struct {
	Asset     string          `sql:"size:42;PRIMARY_KEY"`
	Owner     string          `sql:"size:42;PRIMARY_KEY"`
	Amount    decimal.Decimal `sql:"type:varchar(80)"`
	UpdatedAt time.Time
}

func (balance) TableName() string {
	return "wallet_balances"
}

type allowance struct {
	Asset     string          `sql:"size:42;PRIMARY_KEY"`
	Owner     string          `sql:"size:42;PRIMARY_KEY"`
	Spender   string          `sql:"size:42;PRIMARY_KEY"`
	Amount    decimal.Decimal `sql:"type:varchar(80)"`
	UpdatedAt time.Time
}

func (allowance) TableName() string {
	return "wallet_allowances"
}

type walletStore struct {
	db *db.DB
}

// New new wallet store
func New(db *db.DB) core.WalletStore {
	return &walletStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		for _, model := range []interface{}{balance{}, allowance{}} {
			tx := db.Update().Model(model)
			if err := tx.AutoMigrate(model).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *walletStore) SaveBalance(ctx context.Context, tx *db.DB, b *core.Balance) error {
	return tx.Update().Save(&balance{
		Asset:  b.Asset.Hex(),
		Owner:  b.Owner.Hex(),
		Amount: number.FromUint256(b.Amount),
	}).Error
}

func (s *walletStore) SaveAllowance(ctx context.Context, tx *db.DB, a *core.Allowance) error {
	return tx.Update().Save(&allowance{
		Asset:   a.Asset.Hex(),
		Owner:   a.Owner.Hex(),
		Spender: a.Spender.Hex(),
		Amount:  number.FromUint256(a.Amount),
	}).Error
}

func (s *walletStore) AllBalances(ctx context.Context) ([]*core.Balance, error) {
	var rows []*balance
	if err := s.db.View().Where("amount <> ?", "0").Find(&rows).Error; err != nil {
		return nil, err
	}

	var ints number.Uint256Reader
	balances := make([]*core.Balance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, &core.Balance{
			Asset:  common.HexToAddress(row.Asset),
			Owner:  common.HexToAddress(row.Owner),
			Amount: ints.Read(row.Amount),
		})
	}

	return balances, ints.Err()
}

func (s *walletStore) AllAllowances(ctx context.Context) ([]*core.Allowance, error) {
	var rows []*allowance
	if err := s.db.View().Where("amount <> ?", "0").Find(&rows).Error; err != nil {
		return nil, err
	}

	var ints number.Uint256Reader
	allowances := make([]*core.Allowance, 0, len(rows))
	for _, row := range rows {
		allowances = append(allowances, &core.Allowance{
			Asset:   common.HexToAddress(row.Asset),
			Owner:   common.HexToAddress(row.Owner),
			Spender: common.HexToAddress(row.Spender),
			Amount:  ints.Read(row.Amount),
		})
	}

	return allowances, ints.Err()
}
