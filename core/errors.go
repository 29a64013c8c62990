package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001

	// ErrInvalidAddress null asset or user address
	ErrInvalidAddress ErrorCode = 100100
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100101
	// ErrNoActiveReserve reserve not registered or deactivated
	ErrNoActiveReserve ErrorCode = 100102
	// ErrNoDebtOfSelectedType no debt in the requested rate mode
	ErrNoDebtOfSelectedType ErrorCode = 100103
	// ErrInvalidInterestRateMode rate mode not stable or variable
	ErrInvalidInterestRateMode ErrorCode = 100104
	// ErrNoExplicitAmountOnBehalf repay-all used by someone other than the debtor
	ErrNoExplicitAmountOnBehalf ErrorCode = 100105
	//ErrInsufficientLiquidity insufficient liquidity
	ErrInsufficientLiquidity ErrorCode = 100106
	// ErrReserveFrozen reserve frozen
	ErrReserveFrozen ErrorCode = 100107
	// ErrStableBorrowingDisabled stable borrowing disabled
	ErrStableBorrowingDisabled ErrorCode = 100108
	// ErrNotEnoughAvailableBalance withdraw more than supplied
	ErrNotEnoughAvailableBalance ErrorCode = 100109
	// ErrReserveAlreadyInitialized reserve exists
	ErrReserveAlreadyInitialized ErrorCode = 100110
	// ErrInvalidReserveFactor reserve factor above 100%
	ErrInvalidReserveFactor ErrorCode = 100111
	// ErrMathOverflow balance or total does not fit in 256 bits
	ErrMathOverflow ErrorCode = 100112

	// ErrYieldBoostDisabled yield boost not enabled on reserve
	ErrYieldBoostDisabled ErrorCode = 100200
	// ErrBoosterAlreadyLocked user already locked a booster
	ErrBoosterAlreadyLocked ErrorCode = 100201
	// ErrNoStakers nothing staked to distribute to
	ErrNoStakers ErrorCode = 100202
)

var errorMessages = map[ErrorCode]string{
	ErrUnknown:                   "unknown",
	ErrOperationForbidden:        "operation forbidden",
	ErrInvalidAddress:            "invalid address",
	ErrInvalidAmount:             "invalid amount",
	ErrNoActiveReserve:           "no active reserve",
	ErrNoDebtOfSelectedType:      "no debt of selected type",
	ErrInvalidInterestRateMode:   "invalid interest rate mode",
	ErrNoExplicitAmountOnBehalf:  "no explicit amount to repay on behalf",
	ErrInsufficientLiquidity:     "insufficient liquidity",
	ErrReserveFrozen:             "reserve frozen",
	ErrStableBorrowingDisabled:   "stable borrowing disabled",
	ErrNotEnoughAvailableBalance: "not enough available user balance",
	ErrReserveAlreadyInitialized: "reserve already initialized",
	ErrInvalidReserveFactor:      "invalid reserve factor",
	ErrMathOverflow:              "math overflow",
	ErrYieldBoostDisabled:        "yield boost disabled",
	ErrBoosterAlreadyLocked:      "booster already locked",
	ErrNoStakers:                 "no stakers",
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

// Message human readable description
func (e ErrorCode) Message() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}
	return "unknown"
}

func (e ErrorCode) Error() string {
	return e.String() + " " + e.Message()
}
