package token

import (
	"boostlend/core"
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	asset   = common.HexToAddress("0xa0")
	alice   = common.HexToAddress("0xa1")
	bob     = common.HexToAddress("0xb0")
	spender = common.HexToAddress("0xff")
)

func balanceOf(t *testing.T, l *Ledger, owner common.Address) uint64 {
	v, err := l.BalanceOf(context.Background(), asset, owner)
	require.NoError(t, err)
	return v.Uint64()
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	l := New()
	l.Mint(asset, alice, uint256.NewInt(100))

	require.NoError(t, l.Transfer(ctx, asset, alice, bob, uint256.NewInt(40)))
	assert.Equal(t, uint64(60), balanceOf(t, l, alice))
	assert.Equal(t, uint64(40), balanceOf(t, l, bob))

	err := l.Transfer(ctx, asset, alice, bob, uint256.NewInt(61))
	assert.Equal(t, core.ErrInsufficientBalance, err)
}

func TestTransferFrom(t *testing.T) {
	ctx := context.Background()
	l := New()
	l.Mint(asset, alice, uint256.NewInt(100))

	err := l.TransferFrom(ctx, asset, spender, alice, bob, uint256.NewInt(10))
	assert.Equal(t, core.ErrInsufficientAllowance, err)

	l.Approve(asset, alice, spender, uint256.NewInt(50))
	require.NoError(t, l.TransferFrom(ctx, asset, spender, alice, bob, uint256.NewInt(30)))
	assert.Equal(t, uint64(20), l.Allowance(asset, alice, spender).Uint64())
	assert.Equal(t, uint64(70), balanceOf(t, l, alice))

	err = l.TransferFrom(ctx, asset, spender, alice, bob, uint256.NewInt(21))
	assert.Equal(t, core.ErrInsufficientAllowance, err)

	l.Approve(asset, alice, spender, uint256.NewInt(500))
	err = l.TransferFrom(ctx, asset, spender, alice, bob, uint256.NewInt(71))
	assert.Equal(t, core.ErrInsufficientBalance, err)
	assert.Equal(t, uint64(500), l.Allowance(asset, alice, spender).Uint64())
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	l := New()
	l.Mint(asset, alice, uint256.NewInt(100))
	l.Approve(asset, alice, spender, uint256.NewInt(100))

	id := l.Snapshot()
	require.NoError(t, l.TransferFrom(ctx, asset, spender, alice, bob, uint256.NewInt(30)))
	require.NoError(t, l.Transfer(ctx, asset, bob, alice, uint256.NewInt(5)))
	l.RevertToSnapshot(id)

	assert.Equal(t, uint64(100), balanceOf(t, l, alice))
	assert.Equal(t, uint64(0), balanceOf(t, l, bob))
	assert.Equal(t, uint64(100), l.Allowance(asset, alice, spender).Uint64())

	id = l.Snapshot()
	require.NoError(t, l.Transfer(ctx, asset, alice, bob, uint256.NewInt(1)))
	l.DiscardSnapshot(id)
	assert.Equal(t, uint64(1), balanceOf(t, l, bob))
	assert.Empty(t, l.journal)
}

func TestFlushAndReset(t *testing.T) {
	ctx := context.Background()
	l := New()
	l.Mint(asset, alice, uint256.NewInt(100))
	l.Approve(asset, alice, spender, uint256.NewInt(50))
	require.NoError(t, l.TransferFrom(ctx, asset, spender, alice, bob, uint256.NewInt(30)))

	balances, allowances := l.Flush()
	require.Len(t, balances, 2)
	require.Len(t, allowances, 1)
	assert.Equal(t, uint64(20), allowances[0].Amount.Uint64())

	got := map[common.Address]uint64{}
	for _, b := range balances {
		got[b.Owner] = b.Amount.Uint64()
	}
	assert.Equal(t, map[common.Address]uint64{alice: 70, bob: 30}, got)

	balances, allowances = l.Flush()
	assert.Empty(t, balances)
	assert.Empty(t, allowances)

	restored := New()
	restored.Reset([]*core.Balance{
		{Asset: asset, Owner: alice, Amount: uint256.NewInt(70)},
		{Asset: asset, Owner: bob, Amount: uint256.NewInt(30)},
	}, []*core.Allowance{
		{Asset: asset, Owner: alice, Spender: spender, Amount: uint256.NewInt(20)},
	})
	assert.Equal(t, uint64(70), balanceOf(t, restored, alice))
	assert.Equal(t, uint64(20), restored.Allowance(asset, alice, spender).Uint64())

	balances, _ = restored.Flush()
	assert.Empty(t, balances)
}
