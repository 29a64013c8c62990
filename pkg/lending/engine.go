package lending

import (
	"boostlend/core"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var (
	errUnknownStrategy  = errors.New("lending: unknown rate strategy")
	errRewardsDisabled  = errors.New("lending: reward asset not configured")
	defaultStrategyName = "default"
)

// Snapshotter is implemented by collaborators whose effects can be rolled
// back together with the state
type Snapshotter interface {
	Snapshot() int
	RevertToSnapshot(id int)
	// DiscardSnapshot keeps every change made since the snapshot
	DiscardSnapshot(id int)
}

// Config engine parameters
type Config struct {
	// spender of user allowances and custodian of locked boosters
	Address     common.Address
	Treasury    common.Address
	RewardAsset common.Address
	RewardVault common.Address
	Multipliers core.Multipliers
}

// Engine executes protocol operations against a State
type Engine struct {
	cfg        Config
	tokens     core.TokenService
	boosters   core.BoosterRegistry
	strategies map[string]core.RateStrategy
	clock      func() time.Time
}

// New new engine
func New(cfg Config, tokens core.TokenService, boosters core.BoosterRegistry, strategies map[string]core.RateStrategy) *Engine {
	if cfg.Multipliers == nil {
		cfg.Multipliers = core.Multipliers{}
	}

	return &Engine{
		cfg:        cfg,
		tokens:     tokens,
		boosters:   boosters,
		strategies: strategies,
		clock:      time.Now,
	}
}

// SetClock overrides time.Now
func (e *Engine) SetClock(clock func() time.Time) {
	e.clock = clock
}

func (e *Engine) now() int64 {
	return e.clock().Unix()
}

func (e *Engine) strategy(r *core.Reserve) (core.RateStrategy, error) {
	if s, ok := e.strategies[r.Strategy]; ok {
		return s, nil
	}
	if s, ok := e.strategies[defaultStrategyName]; ok {
		return s, nil
	}
	return nil, errUnknownStrategy
}

// atomic runs fn against st and rolls back st and every snapshotting
// collaborator when fn fails
func (e *Engine) atomic(st *State, fn func() error) error {
	var (
		targets []Snapshotter
		ids     []int
	)
	for _, c := range []interface{}{e.tokens, e.boosters} {
		if s, ok := c.(Snapshotter); ok {
			targets = append(targets, s)
			ids = append(ids, s.Snapshot())
		}
	}

	err := st.atomic(fn)
	for i := len(targets) - 1; i >= 0; i-- {
		if err != nil {
			targets[i].RevertToSnapshot(ids[i])
		} else {
			targets[i].DiscardSnapshot(ids[i])
		}
	}
	return err
}

func (e *Engine) activeReserve(st *State, asset common.Address) (*core.Reserve, error) {
	r, ok := st.reserves[asset]
	if !ok || !r.Active {
		return nil, core.ErrNoActiveReserve
	}
	return r, nil
}

func isZeroAddress(addrs ...common.Address) bool {
	for _, a := range addrs {
		if a == (common.Address{}) {
			return true
		}
	}
	return false
}
