// Package wadray implements the fixed point arithmetic used by the lending
// engine. Rays carry 27 decimals, wads 18 and percentages are expressed in
// basis points. Every operation rounds toward zero.
package wadray

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	// ErrOverflow the result does not fit in 256 bits
	ErrOverflow = errors.New("wadray: uint256 overflow")
	// ErrDivisionByZero zero divisor
	ErrDivisionByZero = errors.New("wadray: division by zero")
)

var (
	// Ray 1e27
	Ray = uint256.MustFromDecimal("1000000000000000000000000000")
	// HalfRay 0.5e27
	HalfRay = uint256.MustFromDecimal("500000000000000000000000000")
	// Wad 1e18
	Wad = uint256.MustFromDecimal("1000000000000000000")
	// WadRayRatio 1e9
	WadRayRatio = uint256.NewInt(1_000_000_000)
	// PercentageFactor 100.00%
	PercentageFactor = uint256.NewInt(10_000)
	// MaxUint256 2^256-1
	MaxUint256 = new(uint256.Int).SetAllOne()
)

// Zero returns a fresh zero value
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// RayOne returns a fresh copy of Ray
func RayOne() *uint256.Int {
	return new(uint256.Int).Set(Ray)
}

// MulDivChecked computes floor(x*y/d) with a 512 bit intermediate product
func MulDivChecked(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}

	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// MulDiv is MulDivChecked for read paths: the result saturates at MaxUint256
// and a zero divisor yields zero. Balances written to state go through the
// checked variants.
func MulDiv(x, y, d *uint256.Int) *uint256.Int {
	z, err := MulDivChecked(x, y, d)
	switch err {
	case nil:
		return z
	case ErrOverflow:
		return new(uint256.Int).Set(MaxUint256)
	default:
		return Zero()
	}
}

// RayDivChecked floor(a*RAY/b), failing on overflow or a zero b
func RayDivChecked(a, b *uint256.Int) (*uint256.Int, error) {
	return MulDivChecked(a, Ray, b)
}

// Add a+b, failing instead of wrapping around
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// RayMul floor(a*b/RAY)
func RayMul(a, b *uint256.Int) *uint256.Int {
	return MulDiv(a, b, Ray)
}

// RayDiv floor(a*RAY/b)
func RayDiv(a, b *uint256.Int) *uint256.Int {
	return MulDiv(a, Ray, b)
}

// WadToRay a*1e9
func WadToRay(a *uint256.Int) *uint256.Int {
	return new(uint256.Int).Mul(a, WadRayRatio)
}

// RayToWad floor(a/1e9)
func RayToWad(a *uint256.Int) *uint256.Int {
	return new(uint256.Int).Div(a, WadRayRatio)
}

// PercentMul floor(value*bps/10000)
func PercentMul(value *uint256.Int, bps uint64) *uint256.Int {
	return MulDiv(value, uint256.NewInt(bps), PercentageFactor)
}

// PercentDiv floor(value*10000/bps)
func PercentDiv(value *uint256.Int, bps uint64) *uint256.Int {
	return MulDiv(value, PercentageFactor, uint256.NewInt(bps))
}

// Min returns a copy of the smaller operand
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}

// SubFloor a-b, clamped at zero
func SubFloor(a, b *uint256.Int) *uint256.Int {
	if !a.Gt(b) {
		return Zero()
	}
	return new(uint256.Int).Sub(a, b)
}

// IsMax reports whether v is the all-ones sentinel
func IsMax(v *uint256.Int) bool {
	return v != nil && v.Eq(MaxUint256)
}
