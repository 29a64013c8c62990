package lending

import (
	"boostlend/core"
	"boostlend/pkg/number"
	"boostlend/pkg/wadray"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ray(v string) *uint256.Int {
	r, err := number.ToRay(number.Decimal(v))
	if err != nil {
		panic(err)
	}
	return r
}

func TestLinearInterest(t *testing.T) {
	assert.Equal(t, wadray.Ray.Dec(), LinearInterest(ray("0.05"), 100, 100).Dec())
	assert.Equal(t, wadray.Ray.Dec(), LinearInterest(ray("0.05"), 100, 50).Dec())
	assert.Equal(t, ray("1.05").Dec(), LinearInterest(ray("0.05"), 0, SecondsPerYear).Dec())
	assert.Equal(t, ray("1.025").Dec(), LinearInterest(ray("0.05"), 0, SecondsPerYear/2).Dec())
}

func TestCompoundedInterest(t *testing.T) {
	assert.Equal(t, wadray.Ray.Dec(), CompoundedInterest(ray("0.05"), 10, 10).Dec())
	assert.Equal(t, wadray.Ray.Dec(), CompoundedInterest(new(uint256.Int), 0, SecondsPerYear).Dec())

	// one second is linear
	perSecond := new(uint256.Int).Div(ray("0.05"), uint256.NewInt(SecondsPerYear))
	assert.Equal(t, new(uint256.Int).Add(wadray.Ray, perSecond).Dec(), CompoundedInterest(ray("0.05"), 0, 1).Dec())

	// e^0.05 = 1.051271096..., the expansion stays just below it
	v := CompoundedInterest(ray("0.05"), 0, SecondsPerYear)
	assert.True(t, v.Gt(ray("1.0512")), v.Dec())
	assert.True(t, v.Lt(ray("1.051272")), v.Dec())
	assert.True(t, v.Gt(LinearInterest(ray("0.05"), 0, SecondsPerYear)))
}

func TestWeightedRates(t *testing.T) {
	avg := weightedAdd(uint256.NewInt(100), ray("0.02"), uint256.NewInt(300), ray("0.06"), uint256.NewInt(400))
	assert.Equal(t, ray("0.05").Dec(), avg.Dec())
	assert.True(t, weightedAdd(uint256.NewInt(1), ray("0.02"), uint256.NewInt(1), ray("0.06"), new(uint256.Int)).IsZero())

	rest, ok := weightedSub(avg, uint256.NewInt(400), ray("0.06"), uint256.NewInt(300), uint256.NewInt(100))
	require.True(t, ok)
	assert.Equal(t, ray("0.02").Dec(), rest.Dec())

	_, ok = weightedSub(ray("0.02"), uint256.NewInt(100), ray("0.02"), uint256.NewInt(100), new(uint256.Int))
	assert.False(t, ok)
}

func TestStateAtomic(t *testing.T) {
	st := NewState()
	st.PutReserve(&core.Reserve{Asset: usdc, LiquidityIndex: wadray.RayOne()})

	boom := errors.New("boom")
	err := st.atomic(func() error {
		st.mutReserve(usdc).LiquidityIndex = ray("2")
		st.mutSupply(usdc, alice).ScaledBalance = uint256.NewInt(10)
		st.emit(core.MintedToTreasury{AssetRef: core.AssetRef{Asset: usdc}, Amount: uint256.NewInt(1)})
		return boom
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, wadray.Ray.Dec(), st.Reserve(usdc).LiquidityIndex.Dec())
	assert.Nil(t, st.Supply(usdc, alice))
	assert.True(t, st.Flush().Empty())

	require.NoError(t, st.atomic(func() error {
		st.mutReserve(usdc).LiquidityIndex = ray("2")
		// nested calls join the running operation
		return st.atomic(func() error {
			st.mutSupply(usdc, alice).ScaledBalance = uint256.NewInt(10)
			return nil
		})
	}))

	cs := st.Flush()
	require.Len(t, cs.Reserves, 1)
	assert.Equal(t, ray("2").Dec(), cs.Reserves[0].LiquidityIndex.Dec())
	require.Len(t, cs.Supplies, 1)
	assert.Equal(t, uint64(10), cs.Supplies[0].ScaledBalance.Uint64())
}
