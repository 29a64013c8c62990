package cmd

import (
	"boostlend/core"
	"boostlend/internal/strategy"
	"boostlend/pkg/lending"
	"boostlend/pkg/number"
	boosterservice "boostlend/service/booster"
	"boostlend/service/pool"
	tokenservice "boostlend/service/token"
	"boostlend/store/booster"
	"boostlend/store/debt"
	"boostlend/store/event"
	"boostlend/store/reserve"
	"boostlend/store/stake"
	"boostlend/store/supply"
	"boostlend/store/wallet"
	"context"
	"fmt"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

// ---------------store-----------------------------------------

func provideStores(database *db.DB) pool.Stores {
	return pool.Stores{
		Reserves: reserve.Cache(reserve.New(database), time.Minute),
		Debts:    debt.New(database),
		Supplies: supply.New(database),
		Stakes:   stake.New(database),
		Events:   event.New(database),
		Wallets:  wallet.New(database),
		Boosters: booster.New(database),
	}
}

// ------------------service------------------------------------

func provideStrategies() (map[string]core.RateStrategy, error) {
	strategies := make(map[string]core.RateStrategy, len(cfg.Strategies))
	for _, c := range cfg.Strategies {
		s, err := strategy.New(c)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", c.Name, err)
		}
		strategies[c.Name] = s
	}

	return strategies, nil
}

// provideGenesis a ledger and booster registry holding the genesis records
func provideGenesis() (*tokenservice.Ledger, *boosterservice.Registry, error) {
	ledger, registry := tokenservice.New(), boosterservice.New(cfg.App.Address)
	if err := mintGenesis(ledger, registry); err != nil {
		return nil, nil, err
	}

	return ledger, registry, nil
}

func mintGenesis(ledger *tokenservice.Ledger, registry *boosterservice.Registry) error {
	for _, b := range cfg.Genesis.Balances {
		amount, err := number.ParseAmount(b.Amount)
		if err != nil {
			return fmt.Errorf("genesis balance of %s: %w", b.Owner.Hex(), err)
		}
		ledger.Mint(b.Asset, b.Owner, amount)

		if b.Allowance == "" {
			continue
		}

		allowance, err := number.ParseAmount(b.Allowance)
		if err != nil {
			return fmt.Errorf("genesis allowance of %s: %w", b.Owner.Hex(), err)
		}
		ledger.Approve(b.Asset, b.Owner, cfg.App.Address, allowance)
	}

	for _, b := range cfg.Genesis.Boosters {
		if err := registry.Mint(boosterservice.Token{
			ID:     b.TokenID,
			Owner:  b.Owner,
			Type:   b.Type,
			Action: b.Action,
		}); err != nil {
			return fmt.Errorf("genesis booster %d: %w", b.TokenID, err)
		}
	}

	return nil
}

func provideEngine(ledger *tokenservice.Ledger, registry *boosterservice.Registry) (*lending.Engine, error) {
	strategies, err := provideStrategies()
	if err != nil {
		return nil, err
	}

	return lending.New(lending.Config{
		Address:     cfg.App.Address,
		Treasury:    cfg.App.Treasury,
		RewardAsset: cfg.App.RewardAsset,
		RewardVault: cfg.App.RewardVault,
		Multipliers: cfg.MultiplierTable(),
	}, ledger, registry, strategies), nil
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// providePool loads the persisted state, mints the genesis records on the
// first start and registers the configured reserves that are not stored yet
func providePool(ctx context.Context, database *db.DB, stores pool.Stores, reg prometheus.Registerer) (*pool.Pool, error) {
	log := logger.FromContext(ctx)

	ledger, registry := tokenservice.New(), boosterservice.New(cfg.App.Address)
	engine, err := provideEngine(ledger, registry)
	if err != nil {
		return nil, err
	}

	p := pool.New(engine, database, stores, reg, ledger, registry)
	if err := p.Load(ctx); err != nil {
		log.WithError(err).Errorln("pool.Load")
		return nil, err
	}

	seeded, err := p.Seed(ctx, func() error {
		return mintGenesis(ledger, registry)
	})
	if err != nil {
		log.WithError(err).Errorln("pool.Seed")
		return nil, err
	}
	if seeded {
		log.Infoln("genesis balances and boosters minted")
	}

	for _, r := range cfg.Reserves {
		if _, err := stores.Reserves.Find(ctx, r.Asset); err == nil {
			continue
		} else if !gorm.IsRecordNotFoundError(err) {
			return nil, err
		}

		if err := p.InitReserve(ctx, lending.ReserveParams{
			Asset:           r.Asset,
			Symbol:          r.Symbol,
			Vault:           r.Vault,
			Strategy:        r.Strategy,
			ReserveFactor:   r.ReserveFactor,
			StableBorrowing: r.StableBorrowing,
			YieldBoost:      r.YieldBoost,
		}); err != nil {
			log.WithError(err).Errorln("pool.InitReserve", r.Symbol)
			return nil, err
		}
	}

	return p, nil
}
