package core

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
)

// InterestRateMode debt accounting scheme
type InterestRateMode int

const (
	// RateModeNone no debt
	RateModeNone InterestRateMode = iota
	// RateModeStable principal + fixed rate
	RateModeStable
	// RateModeVariable scaled balance against the borrow index
	RateModeVariable
)

// IsValid stable or variable
func (m InterestRateMode) IsValid() bool {
	return m == RateModeStable || m == RateModeVariable
}

func (m InterestRateMode) String() string {
	switch m {
	case RateModeStable:
		return "stable"
	case RateModeVariable:
		return "variable"
	default:
		return "none"
	}
}

// ParseInterestRateMode accepts "stable", "variable", "1" or "2"
func ParseInterestRateMode(s string) InterestRateMode {
	switch s {
	case "stable", "1":
		return RateModeStable
	case "variable", "2":
		return RateModeVariable
	default:
		return RateModeNone
	}
}

// VariableDebt variable rate position, balance = scaled * variableBorrowIndex
type VariableDebt struct {
	Asset         common.Address `json:"asset"`
	User          common.Address `json:"user"`
	ScaledBalance *uint256.Int   `json:"scaled_balance"`
	// borrow index at last touch
	LastIndex *uint256.Int `json:"last_index"`
}

// Clone deep copy
func (d *VariableDebt) Clone() *VariableDebt {
	c := *d
	c.ScaledBalance = cloneInt(d.ScaledBalance)
	c.LastIndex = cloneInt(d.LastIndex)
	return &c
}

// StableDebt stable rate position, balance = principal * compound(rate, now - LastUpdated)
type StableDebt struct {
	Asset       common.Address `json:"asset"`
	User        common.Address `json:"user"`
	Principal   *uint256.Int   `json:"principal"`
	Rate        *uint256.Int   `json:"rate"`
	LastUpdated int64          `json:"last_updated"`
}

// Clone deep copy
func (d *StableDebt) Clone() *StableDebt {
	c := *d
	c.Principal = cloneInt(d.Principal)
	c.Rate = cloneInt(d.Rate)
	return &c
}

// DebtStore position store
type DebtStore interface {
	SaveVariable(ctx context.Context, tx *db.DB, debt *VariableDebt) error
	SaveStable(ctx context.Context, tx *db.DB, debt *StableDebt) error
	AllVariable(ctx context.Context) ([]*VariableDebt, error)
	AllStable(ctx context.Context) ([]*StableDebt, error)
}
