package views

import (
	"boostlend/pkg/lending"
	"boostlend/pkg/number"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Reserve reserve view, rates are yearly and indexes plain decimals
type Reserve struct {
	Asset           common.Address  `json:"asset"`
	Symbol          string          `json:"symbol"`
	Vault           common.Address  `json:"vault"`
	Strategy        string          `json:"strategy"`
	Active          bool            `json:"active"`
	Frozen          bool            `json:"frozen"`
	StableBorrowing bool            `json:"stable_borrowing"`
	YieldBoost      bool            `json:"yield_boost"`
	ReserveFactor   decimal.Decimal `json:"reserve_factor"`

	LiquidityIndex      decimal.Decimal `json:"liquidity_index"`
	VariableBorrowIndex decimal.Decimal `json:"variable_borrow_index"`
	SupplyAPR           decimal.Decimal `json:"supply_apr"`
	VariableBorrowAPR   decimal.Decimal `json:"variable_borrow_apr"`
	StableBorrowAPR     decimal.Decimal `json:"stable_borrow_apr"`
	AverageStableAPR    decimal.Decimal `json:"average_stable_apr"`
	Utilization         decimal.Decimal `json:"utilization"`

	TotalSupply       decimal.Decimal `json:"total_supply"`
	TotalStableDebt   decimal.Decimal `json:"total_stable_debt"`
	TotalVariableDebt decimal.Decimal `json:"total_variable_debt"`
	UpdatedAt         int64           `json:"updated_at"`
}

// ReserveFrom builds the view of data
func ReserveFrom(data *lending.ReserveData) Reserve {
	r := data.Reserve
	return Reserve{
		Asset:               r.Asset,
		Symbol:              r.Symbol,
		Vault:               r.Vault,
		Strategy:            r.Strategy,
		Active:              r.Active,
		Frozen:              r.Frozen,
		StableBorrowing:     r.StableBorrowing,
		YieldBoost:          r.YieldBoost,
		ReserveFactor:       decimal.New(int64(r.ReserveFactor), -4),
		LiquidityIndex:      number.FromRay(data.LiquidityIndex),
		VariableBorrowIndex: number.FromRay(data.VariableBorrowIndex),
		SupplyAPR:           number.FromRay(r.CurrentLiquidityRate),
		VariableBorrowAPR:   number.FromRay(r.CurrentVariableBorrowRate),
		StableBorrowAPR:     number.FromRay(r.CurrentStableBorrowRate),
		AverageStableAPR:    number.FromRay(r.AverageStableBorrowRate),
		Utilization:         number.FromRay(data.Utilization),
		TotalSupply:         number.FromUint256(data.TotalSupply),
		TotalStableDebt:     number.FromUint256(data.TotalStableDebt),
		TotalVariableDebt:   number.FromUint256(data.TotalVariableDebt),
		UpdatedAt:           r.LastUpdateTimestamp,
	}
}
