package number

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

func TestCeil(t *testing.T) {
	data := map[string]string{
		"0.10304":     "0.11",
		"0.100000001": "0.11",
		"0.108":       "0.11",
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			c := Ceil(Decimal(k), 2)
			assert.Equal(t, v, c.String(), "should be ceil")
		})
	}
}

func TestRay(t *testing.T) {
	data := map[string]string{
		"0.05": "50000000000000000000000000",
		"1":    "1000000000000000000000000000",
		"0":    "0",
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			r, err := ToRay(Decimal(k))
			assert.Equal(t, nil, err)
			assert.Equal(t, v, r.Dec())
			assert.Equal(t, Decimal(k).String(), FromRay(r).String())
		})
	}
}

func TestToUint256(t *testing.T) {
	v, err := ToUint256(Decimal("12.9"))
	assert.Equal(t, nil, err)
	assert.Equal(t, "12", v.Dec())

	_, err = ToUint256(Decimal("-1"))
	assert.NotEqual(t, nil, err)

	_, err = ToUint256(decimal.New(1, 80))
	assert.NotEqual(t, nil, err)

	assert.Equal(t, "0", MustUint256(Decimal("-3")).Dec())
	assert.Equal(t, "42", FromUint256(uint256.NewInt(42)).String())
	assert.Equal(t, "0", FromUint256(nil).String())
}

func TestUint256Reader(t *testing.T) {
	var r Uint256Reader
	assert.Equal(t, "7", r.Read(Decimal("7")).Dec())
	assert.Equal(t, nil, r.Err())

	assert.Equal(t, "0", r.Read(Decimal("-7")).Dec())
	assert.Equal(t, "9", r.Read(Decimal("9")).Dec())
	assert.Equal(t, errOutOfRange, r.Err())
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("1000")
	assert.Equal(t, nil, err)
	assert.Equal(t, uint64(1000), v.Uint64())

	v, err = ParseAmount("MAX")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, v.Eq(new(uint256.Int).SetAllOne()))

	_, err = ParseAmount("1.5")
	assert.NotEqual(t, nil, err)
}
