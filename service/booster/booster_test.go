package booster

import (
	"boostlend/core"
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	custodian = common.HexToAddress("0xc0")
	alice     = common.HexToAddress("0xa1")
	bob       = common.HexToAddress("0xb0")
)

func TestLockUnlock(t *testing.T) {
	ctx := context.Background()
	r := New(custodian)
	require.NoError(t, r.Mint(Token{ID: 7, Owner: alice, Type: 2, Action: 1}))
	assert.Equal(t, ErrTokenExists, r.Mint(Token{ID: 7, Owner: bob}))

	typ, action, err := r.Describe(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 2, typ)
	assert.EqualValues(t, 1, action)

	_, _, err = r.Describe(ctx, 8)
	assert.Equal(t, ErrTokenNotFound, err)

	assert.Equal(t, ErrNotOwner, r.Lock(ctx, bob, 7))
	require.NoError(t, r.Lock(ctx, alice, 7))
	tok, _ := r.Find(7)
	assert.Equal(t, custodian, tok.Owner)

	require.NoError(t, r.Unlock(ctx, alice, 7))
	tok, _ = r.Find(7)
	assert.Equal(t, alice, tok.Owner)
}

func TestTransferAndRevert(t *testing.T) {
	r := New(custodian)
	require.NoError(t, r.Mint(Token{ID: 1, Owner: alice}))

	id := r.Snapshot()
	require.NoError(t, r.Transfer(alice, bob, 1))
	r.RevertToSnapshot(id)

	tok, ok := r.Find(1)
	require.True(t, ok)
	assert.Equal(t, alice, tok.Owner)

	id = r.Snapshot()
	require.NoError(t, r.Transfer(alice, bob, 1))
	r.DiscardSnapshot(id)
	tok, _ = r.Find(1)
	assert.Equal(t, bob, tok.Owner)
}

func TestFlushAndReset(t *testing.T) {
	ctx := context.Background()
	r := New(custodian)
	require.NoError(t, r.Mint(Token{ID: 7, Owner: alice, Type: 2, Action: 1}))
	require.NoError(t, r.Lock(ctx, alice, 7))

	boosters := r.Flush()
	require.Len(t, boosters, 1)
	assert.Equal(t, &core.Booster{ID: 7, Owner: custodian, Type: 2, Action: 1}, boosters[0])
	assert.Empty(t, r.Flush())

	restored := New(custodian)
	restored.Reset(boosters)
	assert.True(t, restored.Locked(7))
	assert.False(t, restored.Locked(8))
	require.NoError(t, restored.Unlock(ctx, alice, 7))
	assert.False(t, restored.Locked(7))
}
