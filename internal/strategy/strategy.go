package strategy

import (
	"boostlend/core"
	"boostlend/pkg/number"
	"boostlend/pkg/wadray"
	"context"
	"errors"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

var errInvalidOptimalUtilization = errors.New("strategy: optimal utilization must be in (0, 1]")

// Kinked two slope rate curve. Below the optimal utilization rates grow along
// slope1, above it along slope2. All fields are yearly rays.
type Kinked struct {
	OptimalUtilization     *uint256.Int
	ExcessUtilization      *uint256.Int
	BaseVariableBorrowRate *uint256.Int
	VariableRateSlope1     *uint256.Int
	VariableRateSlope2     *uint256.Int
	BaseStableBorrowRate   *uint256.Int
	StableRateSlope1       *uint256.Int
	StableRateSlope2       *uint256.Int
}

// New build a curve from its config
func New(cfg core.StrategyConfig) (*Kinked, error) {
	if !cfg.OptimalUtilization.IsPositive() || cfg.OptimalUtilization.GreaterThan(decimal.NewFromInt(1)) {
		return nil, errInvalidOptimalUtilization
	}

	values := []decimal.Decimal{
		cfg.OptimalUtilization,
		cfg.BaseVariableBorrowRate,
		cfg.VariableRateSlope1,
		cfg.VariableRateSlope2,
		cfg.BaseStableBorrowRate,
		cfg.StableRateSlope1,
		cfg.StableRateSlope2,
	}

	rays := make([]*uint256.Int, len(values))
	for idx, v := range values {
		r, err := number.ToRay(v)
		if err != nil {
			return nil, err
		}
		rays[idx] = r
	}

	return &Kinked{
		OptimalUtilization:     rays[0],
		ExcessUtilization:      new(uint256.Int).Sub(wadray.Ray, rays[0]),
		BaseVariableBorrowRate: rays[1],
		VariableRateSlope1:     rays[2],
		VariableRateSlope2:     rays[3],
		BaseStableBorrowRate:   rays[4],
		StableRateSlope1:       rays[5],
		StableRateSlope2:       rays[6],
	}, nil
}

// Utilization total debt / (available liquidity + total debt), ray
func Utilization(in core.RateInput) *uint256.Int {
	debt := in.TotalDebt()
	if debt.IsZero() {
		return new(uint256.Int)
	}
	return wadray.RayDiv(debt, new(uint256.Int).Add(in.AvailableLiquidity, debt))
}

// CalculateRates implements core.RateStrategy
func (k *Kinked) CalculateRates(_ context.Context, in core.RateInput) (core.Rates, error) {
	utilization := Utilization(in)

	stable := new(uint256.Int).Set(k.BaseStableBorrowRate)
	variable := new(uint256.Int).Set(k.BaseVariableBorrowRate)

	if utilization.Gt(k.OptimalUtilization) {
		excess := wadray.RayDiv(new(uint256.Int).Sub(utilization, k.OptimalUtilization), k.ExcessUtilization)

		stable.Add(stable, k.StableRateSlope1)
		stable.Add(stable, wadray.RayMul(k.StableRateSlope2, excess))

		variable.Add(variable, k.VariableRateSlope1)
		variable.Add(variable, wadray.RayMul(k.VariableRateSlope2, excess))
	} else {
		ratio := wadray.RayDiv(utilization, k.OptimalUtilization)
		stable.Add(stable, wadray.RayMul(k.StableRateSlope1, ratio))
		variable.Add(variable, wadray.RayMul(k.VariableRateSlope1, ratio))
	}

	overall := overallBorrowRate(in.TotalStableDebt, in.TotalVariableDebt, variable, in.AverageStableBorrowRate)
	liquidity := wadray.PercentMul(
		wadray.RayMul(overall, utilization),
		wadray.PercentageFactor.Uint64()-in.ReserveFactor,
	)

	return core.Rates{
		Liquidity: liquidity,
		Stable:    stable,
		Variable:  variable,
	}, nil
}

// overallBorrowRate debt weighted mean of the variable and average stable rate
func overallBorrowRate(totalStable, totalVariable, variableRate, avgStableRate *uint256.Int) *uint256.Int {
	total := new(uint256.Int).Add(totalStable, totalVariable)
	if total.IsZero() {
		return new(uint256.Int)
	}

	weighted := wadray.RayMul(wadray.WadToRay(totalVariable), variableRate)
	weighted.Add(weighted, wadray.RayMul(wadray.WadToRay(totalStable), avgStableRate))
	return wadray.RayDiv(weighted, wadray.WadToRay(total))
}
