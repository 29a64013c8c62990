package codes

import (
	"boostlend/core"
	"boostlend/service/booster"
	"errors"
	"strconv"

	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"

	// InvalidArguments invalid arguments
	InvalidArguments = 100001
)

// With with specified error
func With(err error, code int) error {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(code))
}

// Get get error code
func Get(code twirp.ErrorCode) int {
	switch code {
	case twirp.InvalidArgument:
		return InvalidArguments
	default:
		return twirp.ServerHTTPStatusFromErrorCode(code)
	}
}

// Twirp converts a protocol error into a twirp error carrying its custom code
func Twirp(err error) twirp.Error {
	if twerr, ok := err.(twirp.Error); ok {
		return twerr
	}

	var code core.ErrorCode
	if errors.As(err, &code) {
		twerr := twirp.NewError(protocolCode(code), code.Message())
		return twerr.WithMeta(CustomCodeKey, code.String())
	}

	switch {
	case errors.Is(err, core.ErrInsufficientBalance), errors.Is(err, core.ErrInsufficientAllowance):
		return twirp.NewError(twirp.FailedPrecondition, err.Error())
	case errors.Is(err, booster.ErrTokenNotFound):
		return twirp.NotFoundError(err.Error())
	case errors.Is(err, booster.ErrNotOwner):
		return twirp.NewError(twirp.PermissionDenied, err.Error())
	}

	return twirp.InternalErrorWith(err)
}

func protocolCode(code core.ErrorCode) twirp.ErrorCode {
	switch code {
	case core.ErrInvalidAddress,
		core.ErrInvalidAmount,
		core.ErrInvalidInterestRateMode,
		core.ErrNoExplicitAmountOnBehalf,
		core.ErrInvalidReserveFactor:
		return twirp.InvalidArgument
	case core.ErrNoActiveReserve:
		return twirp.NotFound
	case core.ErrOperationForbidden:
		return twirp.PermissionDenied
	case core.ErrUnknown:
		return twirp.Internal
	default:
		return twirp.FailedPrecondition
	}
}
