package core

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
)

// Reserve per asset pool of supplied liquidity and the debt drawn from it
type Reserve struct {
	Asset  common.Address `json:"asset"`
	Symbol string         `json:"symbol"`
	// underlying custody account
	Vault    common.Address `json:"vault"`
	Strategy string         `json:"strategy"`

	LiquidityIndex            *uint256.Int `json:"liquidity_index"`
	VariableBorrowIndex       *uint256.Int `json:"variable_borrow_index"`
	CurrentLiquidityRate      *uint256.Int `json:"current_liquidity_rate"`
	CurrentVariableBorrowRate *uint256.Int `json:"current_variable_borrow_rate"`
	CurrentStableBorrowRate   *uint256.Int `json:"current_stable_borrow_rate"`
	// principal weighted mean of every stable position
	AverageStableBorrowRate  *uint256.Int `json:"average_stable_borrow_rate"`
	TotalPrincipalStableDebt *uint256.Int `json:"total_principal_stable_debt"`
	ScaledTotalVariableDebt  *uint256.Int `json:"scaled_total_variable_debt"`
	ScaledTotalSupply        *uint256.Int `json:"scaled_total_supply"`

	// basis points
	ReserveFactor                 uint64 `json:"reserve_factor"`
	LastUpdateTimestamp           int64  `json:"last_update_timestamp"`
	StableDebtLastUpdateTimestamp int64  `json:"stable_debt_last_update_timestamp"`

	Active          bool `json:"active"`
	Frozen          bool `json:"frozen"`
	StableBorrowing bool `json:"stable_borrowing"`
	YieldBoost      bool `json:"yield_boost"`
}

// Clone deep copy
func (r *Reserve) Clone() *Reserve {
	c := *r
	c.LiquidityIndex = cloneInt(r.LiquidityIndex)
	c.VariableBorrowIndex = cloneInt(r.VariableBorrowIndex)
	c.CurrentLiquidityRate = cloneInt(r.CurrentLiquidityRate)
	c.CurrentVariableBorrowRate = cloneInt(r.CurrentVariableBorrowRate)
	c.CurrentStableBorrowRate = cloneInt(r.CurrentStableBorrowRate)
	c.AverageStableBorrowRate = cloneInt(r.AverageStableBorrowRate)
	c.TotalPrincipalStableDebt = cloneInt(r.TotalPrincipalStableDebt)
	c.ScaledTotalVariableDebt = cloneInt(r.ScaledTotalVariableDebt)
	c.ScaledTotalSupply = cloneInt(r.ScaledTotalSupply)
	return &c
}

func cloneInt(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}

// ReserveStore reserve store interface
type ReserveStore interface {
	Save(ctx context.Context, tx *db.DB, reserve *Reserve) error
	Find(ctx context.Context, asset common.Address) (*Reserve, error)
	All(ctx context.Context) ([]*Reserve, error)
}
