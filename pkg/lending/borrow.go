package lending

import (
	"boostlend/core"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// BorrowParams borrow input. Collateral admission is decided by the caller.
type BorrowParams struct {
	Asset    common.Address
	Amount   *uint256.Int
	RateMode core.InterestRateMode
	User     common.Address
}

func validateBorrow(st *State, p BorrowParams) (*core.Reserve, error) {
	if isZeroAddress(p.Asset, p.User) {
		return nil, core.ErrInvalidAddress
	}

	r, ok := st.reserves[p.Asset]
	if !ok || !r.Active {
		return nil, core.ErrNoActiveReserve
	}

	if r.Frozen {
		return nil, core.ErrReserveFrozen
	}

	if !p.RateMode.IsValid() {
		return nil, core.ErrInvalidInterestRateMode
	}

	if p.Amount == nil || p.Amount.IsZero() {
		return nil, core.ErrInvalidAmount
	}

	if p.RateMode == core.RateModeStable && !r.StableBorrowing {
		return nil, core.ErrStableBorrowingDisabled
	}

	return r, nil
}

// Borrow opens or grows a debt position and sends Amount from the reserve
// vault to User
func (e *Engine) Borrow(ctx context.Context, st *State, p BorrowParams) error {
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"asset": p.Asset.Hex(),
		"mode":  p.RateMode.String(),
		"user":  p.User.Hex(),
	})

	err := e.atomic(st, func() error {
		if _, err := validateBorrow(st, p); err != nil {
			return err
		}

		now := e.now()
		r, err := e.updateState(st, p.Asset, now)
		if err != nil {
			return err
		}

		available, err := e.tokens.BalanceOf(ctx, p.Asset, r.Vault)
		if err != nil {
			log.WithError(err).Errorln("tokens.BalanceOf")
			return err
		}

		if available.Lt(p.Amount) {
			return core.ErrInsufficientLiquidity
		}

		var rate *uint256.Int
		if p.RateMode == core.RateModeStable {
			rate = new(uint256.Int).Set(r.CurrentStableBorrowRate)
			err = e.mintStableDebt(st, r, p.User, p.Amount, rate, now)
		} else {
			err = e.mintVariableDebt(st, r, p.User, p.Amount)
		}
		if err != nil {
			return err
		}

		if err := e.tokens.Transfer(ctx, p.Asset, r.Vault, p.User, p.Amount); err != nil {
			return err
		}

		if err := e.updateInterestRates(ctx, st, r, now); err != nil {
			return err
		}

		if rate == nil {
			rate = new(uint256.Int).Set(r.CurrentVariableBorrowRate)
		}

		if err := e.refreshYieldBoost(ctx, st, p.Asset, p.User, e.totalDebtOf(st, r, p.User, now)); err != nil {
			return err
		}

		st.emit(core.Borrow{
			AssetRef:   core.AssetRef{Asset: p.Asset},
			User:       p.User,
			Amount:     new(uint256.Int).Set(p.Amount),
			Mode:       p.RateMode,
			BorrowRate: rate,
		})
		return nil
	})

	if err != nil {
		log.WithError(err).Infoln("lending.Borrow")
	}
	return err
}
