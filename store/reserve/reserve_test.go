package reserve

import (
	"boostlend/core"
	"boostlend/pkg/wadray"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReserve() *core.Reserve {
	return &core.Reserve{
		Asset:                         common.HexToAddress("0x1001"),
		Symbol:                        "USDC",
		Vault:                         common.HexToAddress("0x2001"),
		Strategy:                      "default",
		LiquidityIndex:                wadray.RayOne(),
		VariableBorrowIndex:           new(uint256.Int).Add(wadray.Ray, uint256.NewInt(7)),
		CurrentLiquidityRate:          uint256.NewInt(1),
		CurrentVariableBorrowRate:     uint256.NewInt(2),
		CurrentStableBorrowRate:       uint256.NewInt(3),
		AverageStableBorrowRate:       uint256.NewInt(4),
		TotalPrincipalStableDebt:      uint256.NewInt(5),
		ScaledTotalVariableDebt:       wadray.MaxUint256,
		ScaledTotalSupply:             uint256.NewInt(6),
		ReserveFactor:                 1000,
		LastUpdateTimestamp:           1_700_000_000,
		StableDebtLastUpdateTimestamp: 1_700_000_001,
		Active:                        true,
		StableBorrowing:               true,
	}
}

func TestRowConversion(t *testing.T) {
	r := testReserve()
	got, err := fromReserve(r).toReserve()
	require.NoError(t, err)
	assert.Equal(t, r, got)

	row := fromReserve(r)
	row.ScaledTotalSupply = decimal.NewFromInt(-1)
	_, err = row.toReserve()
	assert.Error(t, err)
}

type countingStore struct {
	core.ReserveStore
	finds int
	err   error
}

func (s *countingStore) Find(ctx context.Context, asset common.Address) (*core.Reserve, error) {
	s.finds++
	if s.err != nil {
		return nil, s.err
	}
	r := testReserve()
	r.Asset = asset
	return r, nil
}

func (s *countingStore) Save(ctx context.Context, tx *db.DB, r *core.Reserve) error {
	return nil
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{}
	c := Cache(store, time.Minute)
	asset := common.HexToAddress("0x1001")

	r, err := c.Find(ctx, asset)
	require.NoError(t, err)
	r.Symbol = "changed"

	r, err = c.Find(ctx, asset)
	require.NoError(t, err)
	assert.Equal(t, "USDC", r.Symbol)
	assert.Equal(t, 1, store.finds)

	require.NoError(t, c.Save(ctx, nil, r))
	_, err = c.Find(ctx, asset)
	require.NoError(t, err)
	assert.Equal(t, 1, store.finds, "save alone keeps the cached row")

	c.Evict(asset)
	_, err = c.Find(ctx, asset)
	require.NoError(t, err)
	assert.Equal(t, 2, store.finds)

	store.err = errors.New("db down")
	_, err = c.Find(ctx, common.HexToAddress("0x1002"))
	assert.Equal(t, store.err, err)
}

type evictingStore struct {
	countingStore
	evict func()
}

func (s *evictingStore) Find(ctx context.Context, asset common.Address) (*core.Reserve, error) {
	r, err := s.countingStore.Find(ctx, asset)
	// a commit lands while the row is being read
	s.evict()
	return r, err
}

func TestCacheSkipsLoadsRacingEviction(t *testing.T) {
	ctx := context.Background()
	store := &evictingStore{}
	c := Cache(store, time.Minute)
	asset := common.HexToAddress("0x1001")
	store.evict = func() { c.Evict(asset) }

	_, err := c.Find(ctx, asset)
	require.NoError(t, err)
	_, err = c.Find(ctx, asset)
	require.NoError(t, err)
	assert.Equal(t, 2, store.finds)
}
