package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
	"github.com/jmoiron/sqlx/types"
)

// TokenKind the accounting token an event moves
type TokenKind string

const (
	// TokenLiquidity supplied liquidity shares
	TokenLiquidity TokenKind = "liquidity"
	// TokenStableDebt stable debt
	TokenStableDebt TokenKind = "stable_debt"
	// TokenVariableDebt variable debt
	TokenVariableDebt TokenKind = "variable_debt"
)

// Event protocol event
type Event interface {
	EventName() string
	EventAsset() common.Address
}

// AssetRef reserve the event belongs to
type AssetRef struct {
	Asset common.Address `json:"asset"`
}

// EventAsset implements Event
func (r AssetRef) EventAsset() common.Address {
	return r.Asset
}

type (
	// Transfer token movement, To is zero on burns
	Transfer struct {
		AssetRef
		Token TokenKind      `json:"token"`
		From  common.Address `json:"from"`
		To    common.Address `json:"to"`
		Value *uint256.Int   `json:"value"`
	}

	// Mint net increase of a balance, interest included
	Mint struct {
		AssetRef
		Token           TokenKind      `json:"token"`
		Caller          common.Address `json:"caller"`
		OnBehalfOf      common.Address `json:"on_behalf_of"`
		Value           *uint256.Int   `json:"value"`
		BalanceIncrease *uint256.Int   `json:"balance_increase"`
		// liquidity or borrow index, position rate for stable debt
		Index *uint256.Int `json:"index"`
	}

	// Burn net decrease of a balance, interest included
	Burn struct {
		AssetRef
		Token           TokenKind      `json:"token"`
		From            common.Address `json:"from"`
		Target          common.Address `json:"target"`
		Value           *uint256.Int   `json:"value"`
		BalanceIncrease *uint256.Int   `json:"balance_increase"`
		Index           *uint256.Int   `json:"index"`
	}

	// ReserveDataUpdated rates recomputed
	ReserveDataUpdated struct {
		AssetRef
		LiquidityRate       *uint256.Int `json:"liquidity_rate"`
		StableBorrowRate    *uint256.Int `json:"stable_borrow_rate"`
		VariableBorrowRate  *uint256.Int `json:"variable_borrow_rate"`
		LiquidityIndex      *uint256.Int `json:"liquidity_index"`
		VariableBorrowIndex *uint256.Int `json:"variable_borrow_index"`
	}

	// MintedToTreasury reserve factor share of accrued interest
	MintedToTreasury struct {
		AssetRef
		Amount *uint256.Int `json:"amount"`
	}

	// Deposit liquidity supplied
	Deposit struct {
		AssetRef
		User       common.Address `json:"user"`
		OnBehalfOf common.Address `json:"on_behalf_of"`
		Amount     *uint256.Int   `json:"amount"`
	}

	// Withdraw liquidity redeemed
	Withdraw struct {
		AssetRef
		User   common.Address `json:"user"`
		To     common.Address `json:"to"`
		Amount *uint256.Int   `json:"amount"`
	}

	// Borrow debt opened
	Borrow struct {
		AssetRef
		User       common.Address   `json:"user"`
		Amount     *uint256.Int     `json:"amount"`
		Mode       InterestRateMode `json:"mode"`
		BorrowRate *uint256.Int     `json:"borrow_rate"`
	}

	// Repay debt settled
	Repay struct {
		AssetRef
		Debtor common.Address   `json:"debtor"`
		Payer  common.Address   `json:"payer"`
		Amount *uint256.Int     `json:"amount"`
		Mode   InterestRateMode `json:"mode"`
	}

	// RefreshYieldBoostAmount stake recomputed from debt
	RefreshYieldBoostAmount struct {
		AssetRef
		User   common.Address `json:"user"`
		Amount *uint256.Int   `json:"amount"`
	}

	// StakePositionUpdated stake changed
	StakePositionUpdated struct {
		AssetRef
		User   common.Address `json:"user"`
		Amount *uint256.Int   `json:"amount"`
	}

	// StakePositionRemoved stake dropped to zero
	StakePositionRemoved struct {
		AssetRef
		User common.Address `json:"user"`
	}

	// RewardsDistributed rewards credited to stakers
	RewardsDistributed struct {
		AssetRef
		Funder common.Address `json:"funder"`
		Amount *uint256.Int   `json:"amount"`
	}

	// RewardsClaimed rewards paid out
	RewardsClaimed struct {
		AssetRef
		User   common.Address `json:"user"`
		Amount *uint256.Int   `json:"amount"`
	}

	// LockBoosterNFT booster taken into custody
	LockBoosterNFT struct {
		AssetRef
		User        common.Address `json:"user"`
		TokenID     uint64         `json:"token_id"`
		BoosterType BoosterType    `json:"booster_type"`
		Action      BoosterAction  `json:"action"`
	}

	// UnlockBoosterNFT booster returned
	UnlockBoosterNFT struct {
		AssetRef
		User        common.Address `json:"user"`
		TokenID     uint64         `json:"token_id"`
		BoosterType BoosterType    `json:"booster_type"`
		Action      BoosterAction  `json:"action"`
	}
)

func (Transfer) EventName() string                { return "Transfer" }
func (Mint) EventName() string                    { return "Mint" }
func (Burn) EventName() string                    { return "Burn" }
func (ReserveDataUpdated) EventName() string      { return "ReserveDataUpdated" }
func (MintedToTreasury) EventName() string        { return "MintedToTreasury" }
func (Deposit) EventName() string                 { return "Deposit" }
func (Withdraw) EventName() string                { return "Withdraw" }
func (Borrow) EventName() string                  { return "Borrow" }
func (Repay) EventName() string                   { return "Repay" }
func (RefreshYieldBoostAmount) EventName() string { return "RefreshYieldBoostAmount" }
func (StakePositionUpdated) EventName() string    { return "StakePositionUpdated" }
func (StakePositionRemoved) EventName() string    { return "StakePositionRemoved" }
func (RewardsDistributed) EventName() string      { return "RewardsDistributed" }
func (RewardsClaimed) EventName() string          { return "RewardsClaimed" }
func (LockBoosterNFT) EventName() string          { return "LockBoosterNFT" }
func (UnlockBoosterNFT) EventName() string        { return "UnlockBoosterNFT" }

// EventRecord persisted event
type EventRecord struct {
	ID        int64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string         `sql:"size:36;index:idx_events_trace_id" json:"trace_id"`
	Seq       int            `json:"seq"`
	Name      string         `sql:"size:32;index:idx_events_name" json:"name"`
	Asset     string         `sql:"size:42;index:idx_events_asset" json:"asset"`
	Data      types.JSONText `sql:"type:TEXT" json:"data"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// NewEventRecord encode event e as the seq-th event of trace
func NewEventRecord(traceID string, seq int, e Event) *EventRecord {
	data, err := json.Marshal(e)
	if err != nil {
		data = []byte("{}")
	}

	return &EventRecord{
		TraceID: traceID,
		Seq:     seq,
		Name:    e.EventName(),
		Asset:   e.EventAsset().Hex(),
		Data:    data,
	}
}

// EventStore event store interface
type EventStore interface {
	Create(ctx context.Context, tx *db.DB, records []*EventRecord) error
	List(ctx context.Context, fromID int64, limit int) ([]*EventRecord, error)
	ListByTrace(ctx context.Context, traceID string) ([]*EventRecord, error)
}
