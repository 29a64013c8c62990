package lending

import (
	"boostlend/core"
	"boostlend/pkg/wadray"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// ReserveParams reserve initialisation input
type ReserveParams struct {
	Asset           common.Address
	Symbol          string
	Vault           common.Address
	Strategy        string
	ReserveFactor   uint64
	StableBorrowing bool
	YieldBoost      bool
}

// InitReserve registers an active reserve with both indexes at one
func (e *Engine) InitReserve(ctx context.Context, st *State, p ReserveParams) error {
	log := logger.FromContext(ctx).WithField("asset", p.Asset.Hex())

	err := e.atomic(st, func() error {
		if isZeroAddress(p.Asset, p.Vault) {
			return core.ErrInvalidAddress
		}

		if _, ok := st.reserves[p.Asset]; ok {
			return core.ErrReserveAlreadyInitialized
		}

		if p.ReserveFactor > wadray.PercentageFactor.Uint64() {
			return core.ErrInvalidReserveFactor
		}

		now := e.now()
		r := &core.Reserve{
			Asset:                     p.Asset,
			Symbol:                    p.Symbol,
			Vault:                     p.Vault,
			Strategy:                  p.Strategy,
			LiquidityIndex:            wadray.RayOne(),
			VariableBorrowIndex:       wadray.RayOne(),
			CurrentLiquidityRate:      new(uint256.Int),
			CurrentVariableBorrowRate: new(uint256.Int),
			CurrentStableBorrowRate:   new(uint256.Int),
			AverageStableBorrowRate:   new(uint256.Int),
			TotalPrincipalStableDebt:  new(uint256.Int),
			ScaledTotalVariableDebt:   new(uint256.Int),
			ScaledTotalSupply:         new(uint256.Int),
			ReserveFactor:             p.ReserveFactor,
			LastUpdateTimestamp:       now,
			Active:                    true,
			StableBorrowing:           p.StableBorrowing,
			YieldBoost:                p.YieldBoost,
		}
		st.createReserve(r)

		// base rates of an empty reserve
		return e.updateInterestRates(ctx, st, r, now)
	})

	if err != nil {
		log.WithError(err).Infoln("lending.InitReserve")
	}
	return err
}

// SetReserveActive (de)activates a reserve, inactive reserves reject every operation
func (e *Engine) SetReserveActive(ctx context.Context, st *State, asset common.Address, active bool) error {
	return e.atomic(st, func() error {
		if _, ok := st.reserves[asset]; !ok {
			return core.ErrNoActiveReserve
		}
		st.mutReserve(asset).Active = active
		return nil
	})
}

// SetReserveFrozen frozen reserves accept repay and withdraw only
func (e *Engine) SetReserveFrozen(ctx context.Context, st *State, asset common.Address, frozen bool) error {
	return e.atomic(st, func() error {
		if _, ok := st.reserves[asset]; !ok {
			return core.ErrNoActiveReserve
		}
		st.mutReserve(asset).Frozen = frozen
		return nil
	})
}

// Accrue brings the indexes of asset up to now and refreshes its rates
func (e *Engine) Accrue(ctx context.Context, st *State, asset common.Address) error {
	return e.atomic(st, func() error {
		if _, err := e.activeReserve(st, asset); err != nil {
			return err
		}

		now := e.now()
		r, err := e.updateState(st, asset, now)
		if err != nil {
			return err
		}

		return e.updateInterestRates(ctx, st, r, now)
	})
}
