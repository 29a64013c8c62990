package lending

import (
	"boostlend/pkg/wadray"

	"github.com/holiman/uint256"
)

// SecondsPerYear 365 days
const SecondsPerYear = 365 * 24 * 60 * 60

var secondsPerYear = uint256.NewInt(SecondsPerYear)

// LinearInterest 1 + rate*dt/year, in ray
func LinearInterest(rate *uint256.Int, last, now int64) *uint256.Int {
	if now <= last {
		return wadray.RayOne()
	}

	dt := uint256.NewInt(uint64(now - last))
	result := wadray.MulDiv(rate, dt, secondsPerYear)
	return result.Add(result, wadray.Ray)
}

// CompoundedInterest approximates (1 + rate/year)^dt with the first three
// terms of the binomial expansion, rounding down at every step:
//
//	1 + r*n + r^2*n*(n-1)/2 + r^3*n*(n-1)*(n-2)/6
//
// where r is the per second rate.
func CompoundedInterest(rate *uint256.Int, last, now int64) *uint256.Int {
	if now <= last {
		return wadray.RayOne()
	}

	exp := uint64(now - last)
	expMinusOne := exp - 1
	var expMinusTwo uint64
	if exp > 2 {
		expMinusTwo = exp - 2
	}

	ratePerSecond := new(uint256.Int).Div(rate, secondsPerYear)
	basePowerTwo := wadray.RayMul(ratePerSecond, ratePerSecond)
	basePowerThree := wadray.RayMul(basePowerTwo, ratePerSecond)

	secondTerm := new(uint256.Int).Mul(uint256.NewInt(exp), uint256.NewInt(expMinusOne))
	secondTerm.Mul(secondTerm, basePowerTwo)
	secondTerm.Div(secondTerm, uint256.NewInt(2))

	thirdTerm := new(uint256.Int).Mul(uint256.NewInt(exp), uint256.NewInt(expMinusOne))
	thirdTerm.Mul(thirdTerm, uint256.NewInt(expMinusTwo))
	thirdTerm.Mul(thirdTerm, basePowerThree)
	thirdTerm.Div(thirdTerm, uint256.NewInt(6))

	result := new(uint256.Int).Mul(ratePerSecond, uint256.NewInt(exp))
	result.Add(result, wadray.Ray)
	result.Add(result, secondTerm)
	return result.Add(result, thirdTerm)
}

// weightedAdd floor((t0*r0 + t1*r1) / total)
func weightedAdd(t0, r0, t1, r1, total *uint256.Int) *uint256.Int {
	if total.IsZero() {
		return new(uint256.Int)
	}

	a, o1 := new(uint256.Int).MulOverflow(t0, r0)
	b, o2 := new(uint256.Int).MulOverflow(t1, r1)
	sum, o3 := new(uint256.Int).AddOverflow(a, b)
	if o1 || o2 || o3 {
		return new(uint256.Int).Add(wadray.MulDiv(t0, r0, total), wadray.MulDiv(t1, r1, total))
	}
	return sum.Div(sum, total)
}

// weightedSub floor((t0*r0 - t1*r1) / total). It reports false when the
// removed weight reaches the whole.
func weightedSub(t0, r0, t1, r1, total *uint256.Int) (*uint256.Int, bool) {
	a, o1 := new(uint256.Int).MulOverflow(t0, r0)
	b, o2 := new(uint256.Int).MulOverflow(t1, r1)
	if o1 || o2 {
		x, y := wadray.MulDiv(t0, r0, total), wadray.MulDiv(t1, r1, total)
		if !x.Gt(y) {
			return new(uint256.Int), false
		}
		return x.Sub(x, y), true
	}
	if !a.Gt(b) {
		return new(uint256.Int), false
	}
	if total.IsZero() {
		return new(uint256.Int), true
	}
	diff := new(uint256.Int).Sub(a, b)
	return diff.Div(diff, total), true
}
