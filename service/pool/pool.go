package pool

import (
	"boostlend/core"
	"boostlend/pkg/lending"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/fox-one/pkg/uuid"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotLoaded the in memory state is missing, call Load
	ErrNotLoaded = errors.New("pool: state not loaded")
	// ErrCustodyMismatch a persisted booster lock whose nft is not in custody
	ErrCustodyMismatch = errors.New("pool: locked booster is not in custody")
)

// Transactor runs fn in one database transaction
type Transactor interface {
	Tx(fn func(tx *db.DB) error) error
}

// Stores where the pool state lives
type Stores struct {
	Reserves core.ReserveStore
	Debts    core.DebtStore
	Supplies core.SupplyStore
	Stakes   core.StakeStore
	Events   core.EventStore
	Wallets  core.WalletStore
	Boosters core.BoosterStore
}

// Wallet token ledger persisted together with the protocol state
type Wallet interface {
	lending.Snapshotter
	Flush() ([]*core.Balance, []*core.Allowance)
	Reset(balances []*core.Balance, allowances []*core.Allowance)
}

// Custody booster registry persisted together with the protocol state
type Custody interface {
	lending.Snapshotter
	Flush() []*core.Booster
	Reset(boosters []*core.Booster)
	Locked(tokenID uint64) bool
}

type evicter interface {
	Evict(asset common.Address)
}

type traceKey struct{}

// WithTraceID tags the next operation run with ctx
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

func traceIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(traceKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New()
}

// Pool runs protocol operations one at a time against the in memory state
// and writes the changes of each one, token and booster movements included,
// in a single database transaction. When the write fails the collaborators
// are rolled back and the state is reloaded.
type Pool struct {
	mu      sync.RWMutex
	engine  *lending.Engine
	state   *lending.State
	db      Transactor
	stores  Stores
	wallet  Wallet
	custody Custody
	// nothing persisted for the collaborators yet
	fresh   bool
	metrics *metrics
}

// New creates an unloaded pool over the collaborators the engine uses.
// Metrics are registered on reg when not nil.
func New(engine *lending.Engine, tx Transactor, stores Stores, reg prometheus.Registerer, wallet Wallet, custody Custody) *Pool {
	return &Pool{
		engine:  engine,
		db:      tx,
		stores:  stores,
		wallet:  wallet,
		custody: custody,
		metrics: newMetrics(reg),
	}
}

func (p *Pool) collaborators() []lending.Snapshotter {
	return []lending.Snapshotter{p.wallet, p.custody}
}

// Load replaces the in memory state with the persisted one
func (p *Pool) Load(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.load(ctx)
}

func (p *Pool) load(ctx context.Context) error {
	st := lending.NewState()

	reserves, err := p.stores.Reserves.All(ctx)
	if err != nil {
		return err
	}
	for _, r := range reserves {
		st.PutReserve(r)
	}

	variable, err := p.stores.Debts.AllVariable(ctx)
	if err != nil {
		return err
	}
	for _, d := range variable {
		st.PutVariableDebt(d)
	}

	stable, err := p.stores.Debts.AllStable(ctx)
	if err != nil {
		return err
	}
	for _, d := range stable {
		st.PutStableDebt(d)
	}

	supplies, err := p.stores.Supplies.All(ctx)
	if err != nil {
		return err
	}
	for _, s := range supplies {
		st.PutSupply(s)
	}

	stakes, err := p.stores.Stakes.AllStakes(ctx)
	if err != nil {
		return err
	}
	for _, s := range stakes {
		st.PutStake(s)
	}

	pools, err := p.stores.Stakes.AllPools(ctx)
	if err != nil {
		return err
	}
	for _, yp := range pools {
		st.PutPool(yp)
	}

	balances, err := p.stores.Wallets.AllBalances(ctx)
	if err != nil {
		return err
	}

	allowances, err := p.stores.Wallets.AllAllowances(ctx)
	if err != nil {
		return err
	}

	boosters, err := p.stores.Boosters.All(ctx)
	if err != nil {
		return err
	}

	p.wallet.Reset(balances, allowances)
	p.custody.Reset(boosters)
	p.fresh = len(balances) == 0 && len(allowances) == 0 && len(boosters) == 0

	locks, err := p.stores.Stakes.AllLocks(ctx)
	if err != nil {
		return err
	}
	for _, l := range locks {
		if !p.custody.Locked(l.TokenID) {
			return fmt.Errorf("%w: booster %d of %s", ErrCustodyMismatch, l.TokenID, l.User.Hex())
		}
		st.PutLock(l)
	}

	p.state = st
	p.metrics.reserves.Set(float64(len(reserves)))
	return nil
}

func (p *Pool) apply(ctx context.Context, op string, fn func(ctx context.Context, st *lending.State) error) error {
	traceID := traceIDFrom(ctx)
	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":       op,
		"trace_id": traceID,
	})
	ctx = logger.WithContext(ctx, log)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == nil {
		return ErrNotLoaded
	}

	start := time.Now()
	collaborators := p.collaborators()
	ids := make([]int, len(collaborators))
	for i, s := range collaborators {
		ids[i] = s.Snapshot()
	}

	var persistFailed bool
	err := fn(ctx, p.state)
	if err == nil {
		if err = p.persist(ctx, traceID, p.state.Flush()); err != nil {
			log.WithError(err).Errorln("pool.persist")
			persistFailed = true
		}
	}

	for i := len(collaborators) - 1; i >= 0; i-- {
		if err != nil {
			collaborators[i].RevertToSnapshot(ids[i])
		} else {
			collaborators[i].DiscardSnapshot(ids[i])
		}
	}

	if persistFailed {
		if e := p.load(ctx); e != nil {
			log.WithError(e).Errorln("pool.load")
			p.state = nil
		}
	}

	p.metrics.observe(op, start, err)
	return err
}

func (p *Pool) persist(ctx context.Context, traceID string, cs *lending.ChangeSet) error {
	balances, allowances := p.wallet.Flush()
	boosters := p.custody.Flush()
	if cs.Empty() && len(balances) == 0 && len(allowances) == 0 && len(boosters) == 0 {
		return nil
	}

	err := p.db.Tx(func(tx *db.DB) error {
		for _, b := range balances {
			if err := p.stores.Wallets.SaveBalance(ctx, tx, b); err != nil {
				return err
			}
		}

		for _, a := range allowances {
			if err := p.stores.Wallets.SaveAllowance(ctx, tx, a); err != nil {
				return err
			}
		}

		for _, b := range boosters {
			if err := p.stores.Boosters.Save(ctx, tx, b); err != nil {
				return err
			}
		}

		for _, r := range cs.Reserves {
			if err := p.stores.Reserves.Save(ctx, tx, r); err != nil {
				return err
			}
		}

		for _, d := range cs.VariableDebts {
			if err := p.stores.Debts.SaveVariable(ctx, tx, d); err != nil {
				return err
			}
		}

		for _, d := range cs.StableDebts {
			if err := p.stores.Debts.SaveStable(ctx, tx, d); err != nil {
				return err
			}
		}

		for _, s := range cs.Supplies {
			if err := p.stores.Supplies.Save(ctx, tx, s); err != nil {
				return err
			}
		}

		for _, s := range cs.Stakes {
			if err := p.stores.Stakes.SaveStake(ctx, tx, s); err != nil {
				return err
			}
		}

		for _, k := range cs.RemovedStakes {
			if err := p.stores.Stakes.DeleteStake(ctx, tx, k.Asset, k.User); err != nil {
				return err
			}
		}

		for _, yp := range cs.Pools {
			if err := p.stores.Stakes.SavePool(ctx, tx, yp); err != nil {
				return err
			}
		}

		for _, l := range cs.Locks {
			if err := p.stores.Stakes.SaveLock(ctx, tx, l); err != nil {
				return err
			}
		}

		for _, user := range cs.RemovedLocks {
			if err := p.stores.Stakes.DeleteLock(ctx, tx, user); err != nil {
				return err
			}
		}

		records := make([]*core.EventRecord, 0, len(cs.Events))
		for seq, e := range cs.Events {
			records = append(records, core.NewEventRecord(traceID, seq, e))
		}
		return p.stores.Events.Create(ctx, tx, records)
	})

	if err == nil {
		if len(balances) > 0 || len(allowances) > 0 || len(boosters) > 0 {
			p.fresh = false
		}

		if c, ok := p.stores.Reserves.(evicter); ok {
			for _, r := range cs.Reserves {
				c.Evict(r.Asset)
			}
		}
	}

	p.metrics.persisted(err)
	return err
}

// Seed runs fn, which mints balances and boosters on the collaborators, when
// nothing of theirs is persisted yet and writes the result. It reports
// whether fn ran.
func (p *Pool) Seed(ctx context.Context, fn func() error) (bool, error) {
	var seeded bool
	err := p.apply(ctx, "seed", func(ctx context.Context, _ *lending.State) error {
		if !p.fresh {
			return nil
		}

		if err := fn(); err != nil {
			return err
		}

		seeded = true
		p.fresh = false
		return nil
	})

	return seeded && err == nil, err
}

// InitReserve registers a new reserve
func (p *Pool) InitReserve(ctx context.Context, params lending.ReserveParams) error {
	return p.apply(ctx, "init_reserve", func(ctx context.Context, st *lending.State) error {
		return p.engine.InitReserve(ctx, st, params)
	})
}

// SetReserveActive (de)activates a reserve
func (p *Pool) SetReserveActive(ctx context.Context, asset common.Address, active bool) error {
	return p.apply(ctx, "set_reserve_active", func(ctx context.Context, st *lending.State) error {
		return p.engine.SetReserveActive(ctx, st, asset, active)
	})
}

// SetReserveFrozen (un)freezes a reserve
func (p *Pool) SetReserveFrozen(ctx context.Context, asset common.Address, frozen bool) error {
	return p.apply(ctx, "set_reserve_frozen", func(ctx context.Context, st *lending.State) error {
		return p.engine.SetReserveFrozen(ctx, st, asset, frozen)
	})
}

// Deposit supplies liquidity
func (p *Pool) Deposit(ctx context.Context, params lending.DepositParams) error {
	return p.apply(ctx, "deposit", func(ctx context.Context, st *lending.State) error {
		return p.engine.Deposit(ctx, st, params)
	})
}

// Withdraw redeems liquidity and returns the amount sent
func (p *Pool) Withdraw(ctx context.Context, params lending.WithdrawParams) (*uint256.Int, error) {
	var amount *uint256.Int
	err := p.apply(ctx, "withdraw", func(ctx context.Context, st *lending.State) (err error) {
		amount, err = p.engine.Withdraw(ctx, st, params)
		return err
	})
	return amount, err
}

// Borrow opens or grows a debt position
func (p *Pool) Borrow(ctx context.Context, params lending.BorrowParams) error {
	return p.apply(ctx, "borrow", func(ctx context.Context, st *lending.State) error {
		return p.engine.Borrow(ctx, st, params)
	})
}

// Repay settles debt and returns the amount paid
func (p *Pool) Repay(ctx context.Context, params lending.RepayParams) (*uint256.Int, error) {
	var paid *uint256.Int
	err := p.apply(ctx, "repay", func(ctx context.Context, st *lending.State) (err error) {
		paid, err = p.engine.Repay(ctx, st, params)
		return err
	})
	return paid, err
}

// LockBooster couples booster tokenID of user to its debt on asset
func (p *Pool) LockBooster(ctx context.Context, user common.Address, tokenID uint64, asset common.Address) error {
	return p.apply(ctx, "lock_booster", func(ctx context.Context, st *lending.State) error {
		return p.engine.LockBooster(ctx, st, user, tokenID, asset)
	})
}

// DistributeRewards shares amount among the stakers of asset
func (p *Pool) DistributeRewards(ctx context.Context, asset, funder common.Address, amount *uint256.Int) error {
	return p.apply(ctx, "distribute_rewards", func(ctx context.Context, st *lending.State) error {
		return p.engine.DistributeRewards(ctx, st, asset, funder, amount)
	})
}

// ClaimRewards pays the pending rewards of user on asset
func (p *Pool) ClaimRewards(ctx context.Context, asset, user common.Address) (*uint256.Int, error) {
	var claimed *uint256.Int
	err := p.apply(ctx, "claim_rewards", func(ctx context.Context, st *lending.State) (err error) {
		claimed, err = p.engine.ClaimRewards(ctx, st, asset, user)
		return err
	})
	return claimed, err
}

// Accrue brings asset's indexes and rates up to now
func (p *Pool) Accrue(ctx context.Context, asset common.Address) error {
	return p.apply(ctx, "accrue", func(ctx context.Context, st *lending.State) error {
		return p.engine.Accrue(ctx, st, asset)
	})
}

// AccrueAll accrues every active reserve, each in its own transaction
func (p *Pool) AccrueAll(ctx context.Context) error {
	for _, data := range p.Reserves() {
		if !data.Reserve.Active {
			continue
		}

		if err := p.Accrue(ctx, data.Reserve.Asset); err != nil {
			return err
		}
	}

	return nil
}

// Reserve view of asset
func (p *Pool) Reserve(asset common.Address) (*lending.ReserveData, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state == nil {
		return nil, false
	}
	return p.engine.ReserveData(p.state, asset)
}

// Reserves views of every reserve ordered by asset
func (p *Pool) Reserves() []*lending.ReserveData {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state == nil {
		return nil
	}

	var views []*lending.ReserveData
	for _, r := range p.state.Reserves() {
		if data, ok := p.engine.ReserveData(p.state, r.Asset); ok {
			views = append(views, data)
		}
	}
	return views
}

// Position view of user on asset
func (p *Pool) Position(asset, user common.Address) (*lending.Position, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state == nil {
		return nil, false
	}
	return p.engine.Position(p.state, asset, user)
}

// Positions views of user on every reserve it touched
func (p *Pool) Positions(user common.Address) []*lending.Position {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state == nil {
		return nil
	}
	return p.engine.Positions(p.state, user)
}

// Lock booster lock of user, nil if none
func (p *Pool) Lock(user common.Address) *core.BoosterLock {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state == nil {
		return nil
	}
	return p.state.Lock(user)
}
