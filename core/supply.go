package core

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
)

// Supply liquidity shares held by a user, balance = scaled * liquidityIndex
type Supply struct {
	Asset         common.Address `json:"asset"`
	User          common.Address `json:"user"`
	ScaledBalance *uint256.Int   `json:"scaled_balance"`
	LastIndex     *uint256.Int   `json:"last_index"`
}

// Clone deep copy
func (s *Supply) Clone() *Supply {
	c := *s
	c.ScaledBalance = cloneInt(s.ScaledBalance)
	c.LastIndex = cloneInt(s.LastIndex)
	return &c
}

// SupplyStore supply store interface
type SupplyStore interface {
	Save(ctx context.Context, tx *db.DB, supply *Supply) error
	All(ctx context.Context) ([]*Supply, error)
}
