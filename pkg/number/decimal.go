package number

import (
	"errors"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// RayDecimals ray precision
const RayDecimals int32 = 27

var errOutOfRange = errors.New("number: out of uint256 range")

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// FromUint256 integer value as decimal
func FromUint256(v *uint256.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v.ToBig(), 0)
}

// ToUint256 drops the fractional part, negative or oversized values fail
func ToUint256(d decimal.Decimal) (*uint256.Int, error) {
	if d.IsNegative() {
		return nil, errOutOfRange
	}

	v, overflow := uint256.FromBig(d.Truncate(0).BigInt())
	if overflow {
		return nil, errOutOfRange
	}
	return v, nil
}

// MustUint256 like ToUint256, zero on failure
func MustUint256(d decimal.Decimal) *uint256.Int {
	v, err := ToUint256(d)
	if err != nil {
		return new(uint256.Int)
	}
	return v
}

// ToRay 0.05 -> 5e25
func ToRay(d decimal.Decimal) (*uint256.Int, error) {
	return ToUint256(d.Shift(RayDecimals))
}

// FromRay 5e25 -> 0.05
func FromRay(v *uint256.Int) decimal.Decimal {
	return FromUint256(v).Shift(-RayDecimals)
}

// Uint256Reader converts a run of decimals and keeps the first failure
type Uint256Reader struct {
	err error
}

// Read converts d, zero when d or an earlier value failed
func (r *Uint256Reader) Read(d decimal.Decimal) *uint256.Int {
	v, err := ToUint256(d)
	if err != nil {
		if r.err == nil {
			r.err = err
		}
		return new(uint256.Int)
	}
	return v
}

// Err first conversion failure
func (r *Uint256Reader) Err() error {
	return r.err
}

// ParseAmount parses a base unit integer, "max" is 2^256-1
func ParseAmount(s string) (*uint256.Int, error) {
	if strings.EqualFold(s, "max") {
		return new(uint256.Int).SetAllOne(), nil
	}

	return uint256.FromDecimal(s)
}
