package request

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type key int

const (
	userKey key = iota
)

// ContextX context extension
type ContextX struct {
	context.Context
}

// NewContext context extension
func NewContext(ctx context.Context) ContextX {
	return ContextX{
		Context: ctx,
	}
}

// WithUser context with the authenticated caller
func (c ContextX) WithUser(user common.Address) context.Context {
	return context.WithValue(c, userKey, user)
}

// GetUser get the authenticated caller from context
func (c ContextX) GetUser() (common.Address, bool) {
	user, ok := c.Value(userKey).(common.Address)
	return user, ok
}
