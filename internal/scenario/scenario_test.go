package scenario

import (
	"boostlend/core"
	"boostlend/internal/strategy"
	"boostlend/pkg/lending"
	"boostlend/pkg/number"
	"boostlend/service/booster"
	"boostlend/service/token"
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	usdc     = common.HexToAddress("0x1001")
	protocol = common.HexToAddress("0x3000")
	alice    = common.HexToAddress("0x4001")
	bob      = common.HexToAddress("0x4002")
)

const unlockScript = `
start: 1700000000
steps:
  - {op: mint, asset: 0x1001, user: 0x4000, amount: 10000}
  - {op: approve, asset: 0x1001, user: 0x4000, amount: max}
  - {op: deposit, asset: 0x1001, user: 0x4000, amount: 10000}
  - {op: mint_booster, token_id: 7, user: 0x4001, type: 1, action: 1}
  - {op: lock, user: 0x4001, token_id: 7, asset: 0x1001}
  - {op: borrow, asset: 0x1001, user: 0x4001, amount: 1000, mode: variable}
  - {op: advance, seconds: 31536000}
  - {op: mint, asset: 0x1001, user: 0x4002, amount: 2000}
  - {op: approve, asset: 0x1001, user: 0x4002, amount: max}
  - op: repay
    asset: "0x0000000000000000000000000000000000001001"
    on_behalf_of: 0x4001
    payer: 0x4002
    amount: max
    mode: variable
    expect: no explicit amount
  - {op: mint, asset: 0x1001, user: 0x4001, amount: 500}
  - {op: approve, asset: 0x1001, user: 0x4001, amount: max}
  - {op: repay, asset: 0x1001, user: 0x4001, amount: max, mode: variable}
`

func newRunner(t *testing.T) *Runner {
	k, err := strategy.New(core.StrategyConfig{
		OptimalUtilization: number.Decimal("0.8"),
		VariableRateSlope1: number.Decimal("0.04"),
		VariableRateSlope2: number.Decimal("0.75"),
	})
	require.NoError(t, err)

	ledger := token.New()
	registry := booster.New(protocol)
	engine := lending.New(lending.Config{
		Address:     protocol,
		Multipliers: core.Multipliers{{Type: 1, Action: 1}: 25_000},
	}, ledger, registry, map[string]core.RateStrategy{"default": k})

	st := lending.NewState()
	require.NoError(t, engine.InitReserve(context.Background(), st, lending.ReserveParams{
		Asset:         usdc,
		Symbol:        "USDC",
		Vault:         common.HexToAddress("0x2001"),
		ReserveFactor: 1000,
		YieldBoost:    true,
	}))
	st.Flush()

	return &Runner{
		Engine:   engine,
		State:    st,
		Ledger:   ledger,
		Registry: registry,
		Protocol: protocol,
	}
}

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(unlockScript))
	require.NoError(t, err)

	assert.Equal(t, int64(1_700_000_000), s.Start)
	require.Len(t, s.Steps, 13)

	lock := s.Steps[4]
	assert.Equal(t, "lock", lock.Op)
	assert.Equal(t, uint64(7), lock.TokenID)
	assert.Equal(t, alice, lock.User)
	assert.Equal(t, usdc, lock.Asset)

	repay := s.Steps[9]
	assert.Equal(t, usdc, repay.Asset)
	assert.Equal(t, bob, repay.Payer)
	assert.Equal(t, "max", repay.Amount)
	assert.Equal(t, "no explicit amount", repay.Expect)

	assert.Equal(t, int64(31_536_000), s.Steps[6].Seconds)
}

func TestLoadRejects(t *testing.T) {
	for name, script := range map[string]string{
		"empty":   "start: 1\n",
		"no op":   "steps:\n  - {asset: 0x1001}\n",
		"address": "steps:\n  - {op: mint, asset: nowhere}\n",
	} {
		_, err := Load(strings.NewReader(script))
		assert.Error(t, err, name)
	}
}

func TestRunUnlocksBoosterOnFullRepay(t *testing.T) {
	s, err := Load(strings.NewReader(unlockScript))
	require.NoError(t, err)

	r := newRunner(t)
	var results []Result
	require.NoError(t, r.Run(context.Background(), s, func(res Result) {
		results = append(results, res)
	}))
	require.Len(t, results, len(s.Steps))

	last := results[len(results)-1]
	require.NoError(t, last.Err)
	assert.True(t, last.Amount.GtUint64(1000))

	var names []string
	for _, e := range last.Events {
		names = append(names, e.EventName())
	}
	assert.Contains(t, names, "Repay")
	assert.Contains(t, names, "StakePositionRemoved")
	assert.Contains(t, names, "UnlockBoosterNFT")

	owner, ok := r.Registry.Find(7)
	require.True(t, ok)
	assert.Equal(t, alice, owner.Owner)
	assert.Nil(t, r.State.Lock(alice))
}

func TestRunStopsOnUnexpectedOutcome(t *testing.T) {
	r := newRunner(t)

	s, err := Load(strings.NewReader("steps:\n  - {op: borrow, asset: 0x1001, user: 0x4001, amount: 1, mode: sideways}\n"))
	require.NoError(t, err)
	err = r.Run(context.Background(), s, nil)
	assert.ErrorIs(t, err, core.ErrInvalidInterestRateMode)

	s, err = Load(strings.NewReader("steps:\n  - {op: advance, seconds: 10, expect: boom}\n"))
	require.NoError(t, err)
	assert.Error(t, r.Run(context.Background(), s, nil))

	s, err = Load(strings.NewReader("steps:\n  - {op: mint, asset: 0x1001, user: 0x4001}\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, r.Run(context.Background(), s, nil), errAmountRequired)
}
