package core

import (
	"context"

	"github.com/holiman/uint256"
)

// RateInput reserve figures after the operation
type RateInput struct {
	AvailableLiquidity      *uint256.Int
	TotalStableDebt         *uint256.Int
	TotalVariableDebt       *uint256.Int
	AverageStableBorrowRate *uint256.Int
	// basis points
	ReserveFactor uint64
}

// TotalDebt stable + variable
func (in RateInput) TotalDebt() *uint256.Int {
	return new(uint256.Int).Add(in.TotalStableDebt, in.TotalVariableDebt)
}

// Rates ray per year
type Rates struct {
	Liquidity *uint256.Int
	Stable    *uint256.Int
	Variable  *uint256.Int
}

// RateStrategy interest rate curve
type RateStrategy interface {
	CalculateRates(ctx context.Context, input RateInput) (Rates, error)
}
