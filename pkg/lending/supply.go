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

// DepositParams deposit input
type DepositParams struct {
	Asset      common.Address
	Amount     *uint256.Int
	OnBehalfOf common.Address
	Payer      common.Address
}

// Deposit pulls Amount from Payer into the vault and credits OnBehalfOf
// with liquidity shares
func (e *Engine) Deposit(ctx context.Context, st *State, p DepositParams) error {
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"asset":        p.Asset.Hex(),
		"on_behalf_of": p.OnBehalfOf.Hex(),
		"payer":        p.Payer.Hex(),
	})

	err := e.atomic(st, func() error {
		if isZeroAddress(p.Asset, p.OnBehalfOf, p.Payer) {
			return core.ErrInvalidAddress
		}

		r, err := e.activeReserve(st, p.Asset)
		if err != nil {
			return err
		}

		if r.Frozen {
			return core.ErrReserveFrozen
		}

		if p.Amount == nil || p.Amount.IsZero() || wadray.IsMax(p.Amount) {
			return core.ErrInvalidAmount
		}

		now := e.now()
		r, err = e.updateState(st, p.Asset, now)
		if err != nil {
			return err
		}

		if err := e.mintSupply(st, r, p.Payer, p.OnBehalfOf, p.Amount); err != nil {
			return err
		}

		if err := e.tokens.TransferFrom(ctx, p.Asset, e.cfg.Address, p.Payer, r.Vault, p.Amount); err != nil {
			return err
		}

		if err := e.updateInterestRates(ctx, st, r, now); err != nil {
			return err
		}

		st.emit(core.Deposit{
			AssetRef:   core.AssetRef{Asset: p.Asset},
			User:       p.Payer,
			OnBehalfOf: p.OnBehalfOf,
			Amount:     new(uint256.Int).Set(p.Amount),
		})
		return nil
	})

	if err != nil {
		log.WithError(err).Infoln("lending.Deposit")
	}
	return err
}

// WithdrawParams withdraw input, Amount wadray.MaxUint256 withdraws everything
type WithdrawParams struct {
	Asset  common.Address
	Amount *uint256.Int
	User   common.Address
	To     common.Address
}

// Withdraw burns liquidity shares of User and sends the underlying to To.
// Returns the amount withdrawn.
func (e *Engine) Withdraw(ctx context.Context, st *State, p WithdrawParams) (*uint256.Int, error) {
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"asset": p.Asset.Hex(),
		"user":  p.User.Hex(),
		"to":    p.To.Hex(),
	})

	var amount *uint256.Int
	err := e.atomic(st, func() error {
		if isZeroAddress(p.Asset, p.User, p.To) {
			return core.ErrInvalidAddress
		}

		if _, err := e.activeReserve(st, p.Asset); err != nil {
			return err
		}

		if p.Amount == nil || p.Amount.IsZero() {
			return core.ErrInvalidAmount
		}

		now := e.now()
		r, err := e.updateState(st, p.Asset, now)
		if err != nil {
			return err
		}

		balance := supplyBalance(st, r, p.User, r.LiquidityIndex)
		amount = new(uint256.Int).Set(p.Amount)
		if wadray.IsMax(p.Amount) {
			amount = balance
		}

		if amount.IsZero() || amount.Gt(balance) {
			return core.ErrNotEnoughAvailableBalance
		}

		available, err := e.tokens.BalanceOf(ctx, p.Asset, r.Vault)
		if err != nil {
			log.WithError(err).Errorln("tokens.BalanceOf")
			return err
		}

		if available.Lt(amount) {
			return core.ErrInsufficientLiquidity
		}

		e.burnSupply(st, r, p.User, p.To, amount)

		if err := e.tokens.Transfer(ctx, p.Asset, r.Vault, p.To, amount); err != nil {
			return err
		}

		if err := e.updateInterestRates(ctx, st, r, now); err != nil {
			return err
		}

		st.emit(core.Withdraw{
			AssetRef: core.AssetRef{Asset: p.Asset},
			User:     p.User,
			To:       p.To,
			Amount:   new(uint256.Int).Set(amount),
		})
		return nil
	})

	if err != nil {
		log.WithError(err).Infoln("lending.Withdraw")
		return nil, err
	}
	return amount, nil
}
