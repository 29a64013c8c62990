package lending

import (
	"boostlend/core"
	"boostlend/pkg/wadray"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// NormalizedIncome liquidity index projected to now
func NormalizedIncome(r *core.Reserve, now int64) *uint256.Int {
	if now <= r.LastUpdateTimestamp {
		return new(uint256.Int).Set(r.LiquidityIndex)
	}
	return wadray.RayMul(LinearInterest(r.CurrentLiquidityRate, r.LastUpdateTimestamp, now), r.LiquidityIndex)
}

// NormalizedDebt variable borrow index projected to now
func NormalizedDebt(r *core.Reserve, now int64) *uint256.Int {
	if now <= r.LastUpdateTimestamp {
		return new(uint256.Int).Set(r.VariableBorrowIndex)
	}
	return wadray.RayMul(LinearInterest(r.CurrentVariableBorrowRate, r.LastUpdateTimestamp, now), r.VariableBorrowIndex)
}

// TotalStableDebt stable principal of the reserve compounded at the average rate to now
func TotalStableDebt(r *core.Reserve, now int64) *uint256.Int {
	if r.TotalPrincipalStableDebt.IsZero() {
		return new(uint256.Int)
	}
	return wadray.RayMul(r.TotalPrincipalStableDebt, CompoundedInterest(r.AverageStableBorrowRate, r.StableDebtLastUpdateTimestamp, now))
}

// TotalVariableDebt scaled variable debt at the current index
func TotalVariableDebt(r *core.Reserve) *uint256.Int {
	return wadray.RayMul(r.ScaledTotalVariableDebt, r.VariableBorrowIndex)
}

// updateState accrues both indexes to now and mints the reserve factor
// share of the interest accrued since the last update to the treasury. It
// is a no-op when called twice at the same timestamp.
func (e *Engine) updateState(st *State, asset common.Address, now int64) (*core.Reserve, error) {
	r := st.mutReserve(asset)
	if now <= r.LastUpdateTimestamp {
		return r, nil
	}

	prevVariableIndex := new(uint256.Int).Set(r.VariableBorrowIndex)
	r.LiquidityIndex = NormalizedIncome(r, now)
	r.VariableBorrowIndex = NormalizedDebt(r, now)
	if err := e.accrueToTreasury(st, r, prevVariableIndex, now); err != nil {
		return nil, err
	}

	r.LastUpdateTimestamp = now
	return r, nil
}

// accrueToTreasury must run before LastUpdateTimestamp moves: the previous
// stable total is compounded up to it.
func (e *Engine) accrueToTreasury(st *State, r *core.Reserve, prevVariableIndex *uint256.Int, now int64) error {
	if r.ReserveFactor == 0 {
		return nil
	}

	prevVariable := wadray.RayMul(r.ScaledTotalVariableDebt, prevVariableIndex)
	currVariable := TotalVariableDebt(r)

	var prevStable, currStable *uint256.Int
	if r.TotalPrincipalStableDebt.IsZero() {
		prevStable, currStable = new(uint256.Int), new(uint256.Int)
	} else {
		prevStable = wadray.RayMul(r.TotalPrincipalStableDebt,
			CompoundedInterest(r.AverageStableBorrowRate, r.StableDebtLastUpdateTimestamp, r.LastUpdateTimestamp))
		currStable = TotalStableDebt(r, now)
	}

	curr, err := wadray.Add(currVariable, currStable)
	if err != nil {
		return core.ErrMathOverflow
	}
	prev, err := wadray.Add(prevVariable, prevStable)
	if err != nil {
		return core.ErrMathOverflow
	}
	accrued := wadray.SubFloor(curr, prev)

	amount := wadray.PercentMul(accrued, r.ReserveFactor)
	if amount.IsZero() {
		return nil
	}

	if err := e.mintSupply(st, r, e.cfg.Treasury, e.cfg.Treasury, amount); err != nil {
		return err
	}

	st.emit(core.MintedToTreasury{
		AssetRef: core.AssetRef{Asset: r.Asset},
		Amount:   amount,
	})
	return nil
}

// updateInterestRates asks the reserve strategy for rates matching the
// current liquidity and debt of r
func (e *Engine) updateInterestRates(ctx context.Context, st *State, r *core.Reserve, now int64) error {
	log := logger.FromContext(ctx).WithField("asset", r.Asset.Hex())

	strategy, err := e.strategy(r)
	if err != nil {
		log.WithError(err).Errorln("lending.strategy")
		return err
	}

	liquidity, err := e.tokens.BalanceOf(ctx, r.Asset, r.Vault)
	if err != nil {
		log.WithError(err).Errorln("tokens.BalanceOf")
		return err
	}

	rates, err := strategy.CalculateRates(ctx, core.RateInput{
		AvailableLiquidity:      liquidity,
		TotalStableDebt:         TotalStableDebt(r, now),
		TotalVariableDebt:       TotalVariableDebt(r),
		AverageStableBorrowRate: r.AverageStableBorrowRate,
		ReserveFactor:           r.ReserveFactor,
	})
	if err != nil {
		log.WithError(err).Errorln("strategy.CalculateRates")
		return err
	}

	r.CurrentLiquidityRate = rates.Liquidity
	r.CurrentStableBorrowRate = rates.Stable
	r.CurrentVariableBorrowRate = rates.Variable

	st.emit(core.ReserveDataUpdated{
		AssetRef:            core.AssetRef{Asset: r.Asset},
		LiquidityRate:       new(uint256.Int).Set(rates.Liquidity),
		StableBorrowRate:    new(uint256.Int).Set(rates.Stable),
		VariableBorrowRate:  new(uint256.Int).Set(rates.Variable),
		LiquidityIndex:      new(uint256.Int).Set(r.LiquidityIndex),
		VariableBorrowIndex: new(uint256.Int).Set(r.VariableBorrowIndex),
	})
	return nil
}
