package lending

import (
	"boostlend/core"
	"boostlend/pkg/wadray"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// RepayParams repay input, Amount wadray.MaxUint256 repays the whole debt
type RepayParams struct {
	Asset      common.Address
	Amount     *uint256.Int
	RateMode   core.InterestRateMode
	OnBehalfOf common.Address
	Payer      common.Address
}

func validateRepay(st *State, p RepayParams) error {
	if isZeroAddress(p.Asset, p.OnBehalfOf) {
		return core.ErrInvalidAddress
	}

	if r, ok := st.reserves[p.Asset]; !ok || !r.Active {
		return core.ErrNoActiveReserve
	}

	if !p.RateMode.IsValid() {
		return core.ErrInvalidInterestRateMode
	}

	if p.Amount == nil || p.Amount.IsZero() {
		return core.ErrInvalidAmount
	}

	return nil
}

// Repay settles debt of OnBehalfOf with funds pulled from Payer and returns
// the amount actually paid: the request clamped to the outstanding debt and
// to the payer's balance.
func (e *Engine) Repay(ctx context.Context, st *State, p RepayParams) (*uint256.Int, error) {
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"asset":        p.Asset.Hex(),
		"mode":         p.RateMode.String(),
		"on_behalf_of": p.OnBehalfOf.Hex(),
		"payer":        p.Payer.Hex(),
	})

	var paid *uint256.Int
	err := e.atomic(st, func() error {
		if err := validateRepay(st, p); err != nil {
			return err
		}

		now := e.now()
		r, err := e.updateState(st, p.Asset, now)
		if err != nil {
			return err
		}

		var debt *uint256.Int
		if p.RateMode == core.RateModeStable {
			debt = e.stableDebtOf(st, p.Asset, p.OnBehalfOf, now)
		} else {
			debt = variableDebtBalance(st, r, p.OnBehalfOf, r.VariableBorrowIndex)
		}

		if debt.IsZero() {
			return core.ErrNoDebtOfSelectedType
		}

		target := debt
		if wadray.IsMax(p.Amount) {
			if p.Payer != p.OnBehalfOf {
				return core.ErrNoExplicitAmountOnBehalf
			}
		} else {
			target = wadray.Min(p.Amount, debt)
		}

		balance, err := e.tokens.BalanceOf(ctx, p.Asset, p.Payer)
		if err != nil {
			log.WithError(err).Errorln("tokens.BalanceOf")
			return err
		}
		paid = wadray.Min(target, balance)

		if p.RateMode == core.RateModeStable {
			e.burnStableDebt(st, r, p.OnBehalfOf, p.Payer, paid, now)
		} else {
			e.burnVariableDebt(st, r, p.OnBehalfOf, p.Payer, paid)
		}

		if err := e.tokens.TransferFrom(ctx, p.Asset, e.cfg.Address, p.Payer, r.Vault, paid); err != nil {
			return err
		}

		if err := e.updateInterestRates(ctx, st, r, now); err != nil {
			return err
		}

		if err := e.refreshYieldBoost(ctx, st, p.Asset, p.OnBehalfOf, e.totalDebtOf(st, r, p.OnBehalfOf, now)); err != nil {
			return err
		}

		st.emit(core.Repay{
			AssetRef: core.AssetRef{Asset: p.Asset},
			Debtor:   p.OnBehalfOf,
			Payer:    p.Payer,
			Amount:   new(uint256.Int).Set(paid),
			Mode:     p.RateMode,
		})
		return nil
	})

	if err != nil {
		log.WithError(err).Infoln("lending.Repay")
		return nil, err
	}

	log.WithField("paid", paid.Dec()).Debugln("lending.Repay")
	return paid, nil
}

// totalDebtOf stable plus variable debt of user on r, r already updated to now
func (e *Engine) totalDebtOf(st *State, r *core.Reserve, user common.Address, now int64) *uint256.Int {
	debt := variableDebtBalance(st, r, user, r.VariableBorrowIndex)
	return debt.Add(debt, e.stableDebtOf(st, r.Asset, user, now))
}
