package pool

import (
	"boostlend/core"
	"boostlend/internal/strategy"
	"boostlend/pkg/lending"
	"boostlend/pkg/number"
	"boostlend/pkg/wadray"
	"boostlend/service/booster"
	"boostlend/service/token"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	usdc     = common.HexToAddress("0x1001")
	vault    = common.HexToAddress("0x2001")
	protocol = common.HexToAddress("0x3000")
	treasury = common.HexToAddress("0x3001")
	alice    = common.HexToAddress("0x4001")
	bob      = common.HexToAddress("0x4002")
)

type fakeTx struct {
	err error
}

func (t *fakeTx) Tx(fn func(tx *db.DB) error) error {
	if t.err != nil {
		return t.err
	}
	return fn(nil)
}

type memory struct {
	reserves map[common.Address]*core.Reserve
	variable map[lending.PositionKey]*core.VariableDebt
	stable   map[lending.PositionKey]*core.StableDebt
	supplies map[lending.PositionKey]*core.Supply
	stakes   map[lending.PositionKey]*core.Stake
	pools    map[common.Address]*core.YieldPool
	locks    map[common.Address]*core.BoosterLock
	events   []*core.EventRecord

	balances   map[[2]common.Address]*core.Balance
	allowances map[[3]common.Address]*core.Allowance
	boosters   map[uint64]*core.Booster
}

func newMemory() *memory {
	return &memory{
		reserves: map[common.Address]*core.Reserve{},
		variable: map[lending.PositionKey]*core.VariableDebt{},
		stable:   map[lending.PositionKey]*core.StableDebt{},
		supplies: map[lending.PositionKey]*core.Supply{},
		stakes:   map[lending.PositionKey]*core.Stake{},
		pools:    map[common.Address]*core.YieldPool{},
		locks:    map[common.Address]*core.BoosterLock{},

		balances:   map[[2]common.Address]*core.Balance{},
		allowances: map[[3]common.Address]*core.Allowance{},
		boosters:   map[uint64]*core.Booster{},
	}
}

func (m *memory) stores() Stores {
	return Stores{
		Reserves: (*memReserves)(m),
		Debts:    (*memDebts)(m),
		Supplies: (*memSupplies)(m),
		Stakes:   (*memStakes)(m),
		Events:   (*memEvents)(m),
		Wallets:  (*memWallets)(m),
		Boosters: (*memBoosters)(m),
	}
}

type memReserves memory

func (m *memReserves) Save(_ context.Context, _ *db.DB, r *core.Reserve) error {
	m.reserves[r.Asset] = r.Clone()
	return nil
}

func (m *memReserves) Find(_ context.Context, asset common.Address) (*core.Reserve, error) {
	if r, ok := m.reserves[asset]; ok {
		return r.Clone(), nil
	}
	return nil, errors.New("not found")
}

func (m *memReserves) All(_ context.Context) ([]*core.Reserve, error) {
	var out []*core.Reserve
	for _, r := range m.reserves {
		out = append(out, r.Clone())
	}
	return out, nil
}

type memDebts memory

func (m *memDebts) SaveVariable(_ context.Context, _ *db.DB, d *core.VariableDebt) error {
	m.variable[lending.PositionKey{Asset: d.Asset, User: d.User}] = d.Clone()
	return nil
}

func (m *memDebts) SaveStable(_ context.Context, _ *db.DB, d *core.StableDebt) error {
	m.stable[lending.PositionKey{Asset: d.Asset, User: d.User}] = d.Clone()
	return nil
}

func (m *memDebts) AllVariable(_ context.Context) ([]*core.VariableDebt, error) {
	var out []*core.VariableDebt
	for _, d := range m.variable {
		out = append(out, d.Clone())
	}
	return out, nil
}

func (m *memDebts) AllStable(_ context.Context) ([]*core.StableDebt, error) {
	var out []*core.StableDebt
	for _, d := range m.stable {
		out = append(out, d.Clone())
	}
	return out, nil
}

type memSupplies memory

func (m *memSupplies) Save(_ context.Context, _ *db.DB, s *core.Supply) error {
	m.supplies[lending.PositionKey{Asset: s.Asset, User: s.User}] = s.Clone()
	return nil
}

func (m *memSupplies) All(_ context.Context) ([]*core.Supply, error) {
	var out []*core.Supply
	for _, s := range m.supplies {
		out = append(out, s.Clone())
	}
	return out, nil
}

type memStakes memory

func (m *memStakes) SaveStake(_ context.Context, _ *db.DB, s *core.Stake) error {
	m.stakes[lending.PositionKey{Asset: s.Asset, User: s.User}] = s.Clone()
	return nil
}

func (m *memStakes) DeleteStake(_ context.Context, _ *db.DB, asset, user common.Address) error {
	delete(m.stakes, lending.PositionKey{Asset: asset, User: user})
	return nil
}

func (m *memStakes) SavePool(_ context.Context, _ *db.DB, p *core.YieldPool) error {
	m.pools[p.Asset] = p.Clone()
	return nil
}

func (m *memStakes) SaveLock(_ context.Context, _ *db.DB, l *core.BoosterLock) error {
	m.locks[l.User] = l.Clone()
	return nil
}

func (m *memStakes) DeleteLock(_ context.Context, _ *db.DB, user common.Address) error {
	delete(m.locks, user)
	return nil
}

func (m *memStakes) AllStakes(_ context.Context) ([]*core.Stake, error) {
	var out []*core.Stake
	for _, s := range m.stakes {
		out = append(out, s.Clone())
	}
	return out, nil
}

func (m *memStakes) AllPools(_ context.Context) ([]*core.YieldPool, error) {
	var out []*core.YieldPool
	for _, p := range m.pools {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (m *memStakes) AllLocks(_ context.Context) ([]*core.BoosterLock, error) {
	var out []*core.BoosterLock
	for _, l := range m.locks {
		out = append(out, l.Clone())
	}
	return out, nil
}

type memEvents memory

func (m *memEvents) Create(_ context.Context, _ *db.DB, records []*core.EventRecord) error {
	m.events = append(m.events, records...)
	return nil
}

func (m *memEvents) List(_ context.Context, fromID int64, limit int) ([]*core.EventRecord, error) {
	return m.events, nil
}

func (m *memEvents) ListByTrace(_ context.Context, traceID string) ([]*core.EventRecord, error) {
	var out []*core.EventRecord
	for _, r := range m.events {
		if r.TraceID == traceID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memWallets memory

func (m *memWallets) SaveBalance(_ context.Context, _ *db.DB, b *core.Balance) error {
	c := *b
	m.balances[[2]common.Address{b.Asset, b.Owner}] = &c
	return nil
}

func (m *memWallets) SaveAllowance(_ context.Context, _ *db.DB, a *core.Allowance) error {
	c := *a
	m.allowances[[3]common.Address{a.Asset, a.Owner, a.Spender}] = &c
	return nil
}

func (m *memWallets) AllBalances(_ context.Context) ([]*core.Balance, error) {
	var out []*core.Balance
	for _, b := range m.balances {
		if !b.Amount.IsZero() {
			c := *b
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memWallets) AllAllowances(_ context.Context) ([]*core.Allowance, error) {
	var out []*core.Allowance
	for _, a := range m.allowances {
		if !a.Amount.IsZero() {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

type memBoosters memory

func (m *memBoosters) Save(_ context.Context, _ *db.DB, b *core.Booster) error {
	c := *b
	m.boosters[b.ID] = &c
	return nil
}

func (m *memBoosters) All(_ context.Context) ([]*core.Booster, error) {
	var out []*core.Booster
	for _, b := range m.boosters {
		c := *b
		out = append(out, &c)
	}
	return out, nil
}

type fixture struct {
	ctx        context.Context
	mem        *memory
	tx         *fakeTx
	tokens     *token.Ledger
	boosters   *booster.Registry
	strategies map[string]core.RateStrategy
	now        time.Time
	engine     *lending.Engine
	pool       *Pool
	reg        *prometheus.Registry
}

// restart builds a pool the way a new process does, with empty collaborators
// loaded from the same stores
func (f *fixture) restart(t *testing.T) (*Pool, *token.Ledger, *booster.Registry) {
	tokens, boosters := token.New(), booster.New(protocol)
	engine := lending.New(lending.Config{Address: protocol, Treasury: treasury}, tokens, boosters, f.strategies)
	engine.SetClock(func() time.Time { return f.now })

	p := New(engine, f.tx, f.mem.stores(), nil, tokens, boosters)
	require.NoError(t, p.Load(f.ctx))
	return p, tokens, boosters
}

func newFixture(t *testing.T) *fixture {
	k, err := strategy.New(core.StrategyConfig{
		OptimalUtilization: number.Decimal("0.8"),
		VariableRateSlope1: number.Decimal("0.04"),
		VariableRateSlope2: number.Decimal("0.75"),
	})
	require.NoError(t, err)

	f := &fixture{
		ctx:        context.Background(),
		mem:        newMemory(),
		tx:         &fakeTx{},
		tokens:     token.New(),
		boosters:   booster.New(protocol),
		strategies: map[string]core.RateStrategy{"default": k},
		now:        time.Unix(1_700_000_000, 0),
		reg:        prometheus.NewRegistry(),
	}

	f.engine = lending.New(lending.Config{Address: protocol, Treasury: treasury}, f.tokens, f.boosters, f.strategies)
	f.engine.SetClock(func() time.Time { return f.now })
	f.pool = New(f.engine, f.tx, f.mem.stores(), f.reg, f.tokens, f.boosters)
	require.NoError(t, f.pool.Load(f.ctx))

	for _, user := range []common.Address{alice, bob} {
		f.tokens.Mint(usdc, user, uint256.NewInt(10_000))
		f.tokens.Approve(usdc, user, protocol, wadray.MaxUint256)
	}

	require.NoError(t, f.pool.InitReserve(f.ctx, lending.ReserveParams{
		Asset:         usdc,
		Symbol:        "USDC",
		Vault:         vault,
		ReserveFactor: 1000,
		YieldBoost:    true,
	}))
	require.NoError(t, f.pool.Deposit(f.ctx, lending.DepositParams{Asset: usdc, Amount: uint256.NewInt(5000), OnBehalfOf: alice, Payer: alice}))
	return f
}

func TestPoolPersistsChanges(t *testing.T) {
	f := newFixture(t)

	ctx := WithTraceID(f.ctx, "borrow-1")
	require.NoError(t, f.pool.Borrow(ctx, lending.BorrowParams{Asset: usdc, Amount: uint256.NewInt(1000), RateMode: core.RateModeVariable, User: bob}))

	require.Contains(t, f.mem.reserves, usdc)
	assert.Equal(t, f.pool.state.Reserve(usdc), f.mem.reserves[usdc])

	key := lending.PositionKey{Asset: usdc, User: bob}
	require.Contains(t, f.mem.variable, key)
	assert.Equal(t, uint64(1000), f.mem.variable[key].ScaledBalance.Uint64())
	assert.Contains(t, f.mem.stakes, key)

	records, _ := (*memEvents)(f.mem).ListByTrace(f.ctx, "borrow-1")
	require.NotEmpty(t, records)
	for i, r := range records {
		assert.Equal(t, i, r.Seq)
	}
	assert.Equal(t, "Borrow", records[len(records)-1].Name)
	assert.Equal(t, usdc.Hex(), records[len(records)-1].Asset)

	paid, err := f.pool.Repay(f.ctx, lending.RepayParams{Asset: usdc, Amount: wadray.MaxUint256, RateMode: core.RateModeVariable, OnBehalfOf: bob, Payer: bob})
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), paid.Uint64())
	assert.NotContains(t, f.mem.stakes, key)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.pool.metrics.operations.WithLabelValues("repay", "ok")))
}

func TestPoolRollsBackWhenPersistFails(t *testing.T) {
	f := newFixture(t)
	f.tx.err = errors.New("db down")

	err := f.pool.Borrow(f.ctx, lending.BorrowParams{Asset: usdc, Amount: uint256.NewInt(1000), RateMode: core.RateModeVariable, User: bob})
	assert.Equal(t, f.tx.err, err)

	p, ok := f.pool.Position(usdc, bob)
	require.True(t, ok)
	assert.True(t, p.VariableDebt.IsZero())

	bal, _ := f.tokens.BalanceOf(f.ctx, usdc, bob)
	assert.Equal(t, uint64(10_000), bal.Uint64())
	bal, _ = f.tokens.BalanceOf(f.ctx, usdc, vault)
	assert.Equal(t, uint64(5000), bal.Uint64())

	assert.Equal(t, float64(1), testutil.ToFloat64(f.pool.metrics.persists.WithLabelValues("error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.pool.metrics.operations.WithLabelValues("borrow", "error")))

	f.tx.err = nil
	require.NoError(t, f.pool.Borrow(f.ctx, lending.BorrowParams{Asset: usdc, Amount: uint256.NewInt(1000), RateMode: core.RateModeVariable, User: bob}))
}

func TestPoolLoad(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.pool.Borrow(f.ctx, lending.BorrowParams{Asset: usdc, Amount: uint256.NewInt(400), RateMode: core.RateModeVariable, User: bob}))

	reloaded := New(f.engine, f.tx, f.mem.stores(), nil, f.tokens, f.boosters)
	_, ok := reloaded.Reserve(usdc)
	assert.False(t, ok)
	assert.Equal(t, ErrNotLoaded, reloaded.Accrue(f.ctx, usdc))

	require.NoError(t, reloaded.Load(f.ctx))
	want, _ := f.pool.Position(usdc, bob)
	got, ok := reloaded.Position(usdc, bob)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Len(t, reloaded.Positions(alice), 1)
	assert.Len(t, reloaded.Reserves(), 1)
}

func TestPoolFailedOperationWritesNothing(t *testing.T) {
	f := newFixture(t)
	events := len(f.mem.events)

	_, err := f.pool.Repay(f.ctx, lending.RepayParams{Asset: usdc, Amount: uint256.NewInt(1), RateMode: core.RateModeVariable, OnBehalfOf: bob, Payer: bob})
	assert.Equal(t, core.ErrNoDebtOfSelectedType, err)
	assert.Len(t, f.mem.events, events)
	assert.NotContains(t, f.mem.variable, lending.PositionKey{Asset: usdc, User: bob})
}

func TestPoolRestartUnlocksBoosterOnFullRepay(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.boosters.Mint(booster.Token{ID: 7, Owner: bob, Type: 1, Action: 1}))
	require.NoError(t, f.pool.LockBooster(f.ctx, bob, 7, usdc))
	require.NoError(t, f.pool.Borrow(f.ctx, lending.BorrowParams{Asset: usdc, Amount: uint256.NewInt(100), RateMode: core.RateModeVariable, User: bob}))

	p, tokens, boosters := f.restart(t)
	seeded, err := p.Seed(f.ctx, func() error {
		return boosters.Mint(booster.Token{ID: 7, Owner: bob, Type: 1, Action: 1})
	})
	require.NoError(t, err)
	assert.False(t, seeded)

	assert.True(t, boosters.Locked(7))
	bal, _ := tokens.BalanceOf(f.ctx, usdc, vault)
	assert.Equal(t, uint64(4900), bal.Uint64())
	bal, _ = tokens.BalanceOf(f.ctx, usdc, bob)
	assert.Equal(t, uint64(10_100), bal.Uint64())

	paid, err := p.Repay(f.ctx, lending.RepayParams{Asset: usdc, Amount: wadray.MaxUint256, RateMode: core.RateModeVariable, OnBehalfOf: bob, Payer: bob})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), paid.Uint64())

	assert.Nil(t, p.Lock(bob))
	tok, _ := boosters.Find(7)
	assert.Equal(t, bob, tok.Owner)
	assert.Equal(t, bob, f.mem.boosters[7].Owner)
	assert.NotContains(t, f.mem.locks, bob)
	assert.Equal(t, uint64(5000), f.mem.balances[[2]common.Address{usdc, vault}].Amount.Uint64())
}

func TestPoolSeedsOnlyOnce(t *testing.T) {
	f := newFixture(t)
	seeded, err := f.pool.Seed(f.ctx, func() error {
		t.Fatal("collaborators are already persisted")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, seeded)

	mem := newMemory()
	tokens, boosters := token.New(), booster.New(protocol)
	engine := lending.New(lending.Config{Address: protocol}, tokens, boosters, f.strategies)
	p := New(engine, f.tx, mem.stores(), nil, tokens, boosters)
	require.NoError(t, p.Load(f.ctx))

	genesis := func() error {
		tokens.Mint(usdc, alice, uint256.NewInt(10))
		return boosters.Mint(booster.Token{ID: 1, Owner: alice})
	}

	failing := func() error {
		tokens.Mint(usdc, bob, uint256.NewInt(99))
		return booster.ErrTokenExists
	}
	_, err = p.Seed(f.ctx, failing)
	assert.Equal(t, booster.ErrTokenExists, err)
	bal, _ := tokens.BalanceOf(f.ctx, usdc, bob)
	assert.True(t, bal.IsZero())

	seeded, err = p.Seed(f.ctx, genesis)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Equal(t, uint64(10), mem.balances[[2]common.Address{usdc, alice}].Amount.Uint64())
	assert.Equal(t, alice, mem.boosters[1].Owner)

	seeded, err = p.Seed(f.ctx, genesis)
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestPoolLoadRejectsLockOutsideCustody(t *testing.T) {
	f := newFixture(t)
	f.mem.locks[bob] = &core.BoosterLock{User: bob, TokenID: 7, LockedAsset: usdc}
	f.mem.boosters[7] = &core.Booster{ID: 7, Owner: bob}

	err := f.pool.Load(f.ctx)
	assert.True(t, errors.Is(err, ErrCustodyMismatch))
}
