package core

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
)

var (
	// ErrInsufficientBalance transfer amount exceeds balance
	ErrInsufficientBalance = errors.New("token: transfer amount exceeds balance")
	// ErrInsufficientAllowance transfer amount exceeds allowance
	ErrInsufficientAllowance = errors.New("token: transfer amount exceeds allowance")
)

// TokenService underlying asset transfers
type TokenService interface {
	BalanceOf(ctx context.Context, asset, owner common.Address) (*uint256.Int, error)
	Transfer(ctx context.Context, asset, from, to common.Address, amount *uint256.Int) error
	// TransferFrom moves amount from -> to, spending spender's allowance on from
	TransferFrom(ctx context.Context, asset, spender, from, to common.Address, amount *uint256.Int) error
}

// Balance underlying balance of owner
type Balance struct {
	Asset  common.Address `json:"asset"`
	Owner  common.Address `json:"owner"`
	Amount *uint256.Int   `json:"amount"`
}

// Allowance amount spender may move out of owner's balance
type Allowance struct {
	Asset   common.Address `json:"asset"`
	Owner   common.Address `json:"owner"`
	Spender common.Address `json:"spender"`
	Amount  *uint256.Int   `json:"amount"`
}

// WalletStore persisted balances and allowances of the token ledger
type WalletStore interface {
	SaveBalance(ctx context.Context, tx *db.DB, balance *Balance) error
	SaveAllowance(ctx context.Context, tx *db.DB, allowance *Allowance) error
	AllBalances(ctx context.Context) ([]*Balance, error)
	AllAllowances(ctx context.Context) ([]*Allowance, error)
}
