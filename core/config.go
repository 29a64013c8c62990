package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config boostlend config
type Config struct {
	App        App              `json:"app"`
	DB         db.Config        `json:"db"`
	Reserves   []ReserveConfig  `json:"reserves"`
	Strategies []StrategyConfig `json:"strategies"`
	Boosters   []BoosterConfig  `json:"boosters"`
	Genesis    Genesis          `json:"genesis"`
}

// App app config
type App struct {
	// protocol account: spends allowances and holds locked boosters
	Address  common.Address `json:"address"`
	Treasury common.Address `json:"treasury"`
	// rewards paid on stake release, disabled when zero
	RewardAsset common.Address `json:"reward_asset"`
	RewardVault common.Address `json:"reward_vault"`
	// keeper cron spec, e.g. "@every 30s"
	AccrueSchedule string `json:"accrue_schedule"`
	// hmac key of the bearer tokens accepted by the api
	AuthSecret string `json:"auth_secret"`
	AuthIssuer string `json:"auth_issuer"`
}

// ReserveConfig reserve initialised on startup
type ReserveConfig struct {
	Asset           common.Address `json:"asset"`
	Symbol          string         `json:"symbol"`
	Vault           common.Address `json:"vault"`
	ReserveFactor   uint64         `json:"reserve_factor"`
	Strategy        string         `json:"strategy"`
	StableBorrowing bool           `json:"stable_borrowing"`
	YieldBoost      bool           `json:"yield_boost"`
}

// StrategyConfig kinked rate curve, yearly rates as plain decimals
type StrategyConfig struct {
	Name                   string          `json:"name"`
	OptimalUtilization     decimal.Decimal `json:"optimal_utilization"`
	BaseVariableBorrowRate decimal.Decimal `json:"base_variable_borrow_rate"`
	VariableRateSlope1     decimal.Decimal `json:"variable_rate_slope1"`
	VariableRateSlope2     decimal.Decimal `json:"variable_rate_slope2"`
	BaseStableBorrowRate   decimal.Decimal `json:"base_stable_borrow_rate"`
	StableRateSlope1       decimal.Decimal `json:"stable_rate_slope1"`
	StableRateSlope2       decimal.Decimal `json:"stable_rate_slope2"`
}

// BoosterConfig multiplier of a booster kind
type BoosterConfig struct {
	Type       BoosterType   `json:"type"`
	Action     BoosterAction `json:"action"`
	Multiplier uint64        `json:"multiplier"`
}

// Genesis seed data of the in process token ledger and booster registry
type Genesis struct {
	Balances []GenesisBalance `json:"balances"`
	Boosters []GenesisBooster `json:"boosters"`
}

// GenesisBalance initial balance and allowance to the protocol
type GenesisBalance struct {
	Asset     common.Address `json:"asset"`
	Owner     common.Address `json:"owner"`
	Amount    string         `json:"amount"`
	Allowance string         `json:"allowance"`
}

// GenesisBooster pre minted booster
type GenesisBooster struct {
	TokenID uint64         `json:"token_id"`
	Owner   common.Address `json:"owner"`
	Type    BoosterType    `json:"type"`
	Action  BoosterAction  `json:"action"`
}

// MultiplierTable build the multiplier lookup
func (c *Config) MultiplierTable() Multipliers {
	m := make(Multipliers, len(c.Boosters))
	for _, b := range c.Boosters {
		m[BoosterKey{Type: b.Type, Action: b.Action}] = b.Multiplier
	}
	return m
}
