package rest

import (
	"boostlend/core"
	"boostlend/handler/param"
	"boostlend/handler/render"
	"boostlend/handler/request"
	"boostlend/handler/views"
	"boostlend/pkg/id"
	"boostlend/pkg/lending"
	"boostlend/service/pool"
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// every operation runs under a fresh trace id, returned to the caller so
// it can fetch the events via /events/{trace}
func traced(r *http.Request) (context.Context, string) {
	traceID := id.GenTraceID()
	ctx := r.Context()
	ctx = logger.WithContext(ctx, logger.FromContext(ctx).WithField("trace_id", traceID))
	return pool.WithTraceID(ctx, traceID), traceID
}

// caller the authenticated account, routes are guarded by auth.LoginRequired
func caller(r *http.Request) common.Address {
	user, _ := request.NewContext(r.Context()).GetUser()
	return user
}

func addressOr(s string, def common.Address) common.Address {
	if s == "" {
		return def
	}
	return common.HexToAddress(s)
}

func amountResult(traceID string, amount *uint256.Int) views.Amount {
	return views.Amount{TraceID: traceID, Amount: amount.Dec()}
}

type operationBody struct {
	Asset  string `json:"asset" valid:"address,required"`
	Amount string `json:"amount" valid:"amount,required"`
}

func (b operationBody) parse() (common.Address, *uint256.Int, error) {
	asset, err := param.Address(b.Asset)
	if err != nil {
		return asset, nil, err
	}

	amount, err := param.Amount(b.Amount)
	return asset, amount, err
}

func depositHandler(p Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			operationBody
			OnBehalfOf string `json:"on_behalf_of" valid:"address"`
		}
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		asset, amount, err := body.parse()
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		payer := caller(r)
		ctx, traceID := traced(r)
		if err := p.Deposit(ctx, lending.DepositParams{
			Asset:      asset,
			Amount:     amount,
			OnBehalfOf: addressOr(body.OnBehalfOf, payer),
			Payer:      payer,
		}); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, amountResult(traceID, amount))
	}
}

func withdrawHandler(p Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			operationBody
			To string `json:"to" valid:"address"`
		}
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		asset, amount, err := body.parse()
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		user := caller(r)
		ctx, traceID := traced(r)
		withdrawn, err := p.Withdraw(ctx, lending.WithdrawParams{
			Asset:  asset,
			Amount: amount,
			User:   user,
			To:     addressOr(body.To, user),
		})
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, amountResult(traceID, withdrawn))
	}
}

func borrowHandler(p Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			operationBody
			Mode string `json:"mode" valid:"in(stable|variable|1|2),required"`
		}
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		asset, amount, err := body.parse()
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		ctx, traceID := traced(r)
		if err := p.Borrow(ctx, lending.BorrowParams{
			Asset:    asset,
			Amount:   amount,
			RateMode: core.ParseInterestRateMode(body.Mode),
			User:     caller(r),
		}); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, amountResult(traceID, amount))
	}
}

func repayHandler(p Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			operationBody
			Mode       string `json:"mode" valid:"required"`
			OnBehalfOf string `json:"on_behalf_of" valid:"address"`
		}
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		asset, amount, err := body.parse()
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		payer := caller(r)
		ctx, traceID := traced(r)
		paid, err := p.Repay(ctx, lending.RepayParams{
			Asset:      asset,
			Amount:     amount,
			RateMode:   core.ParseInterestRateMode(body.Mode),
			OnBehalfOf: addressOr(body.OnBehalfOf, payer),
			Payer:      payer,
		})
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, amountResult(traceID, paid))
	}
}

func lockBoosterHandler(p Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TokenID uint64 `json:"token_id"`
			Asset   string `json:"asset" valid:"address,required"`
		}
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		ctx, _ := traced(r)
		if err := p.LockBooster(ctx, caller(r), body.TokenID, common.HexToAddress(body.Asset)); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func claimRewardsHandler(p Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Asset string `json:"asset" valid:"address,required"`
		}
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		ctx, traceID := traced(r)
		claimed, err := p.ClaimRewards(ctx, common.HexToAddress(body.Asset), caller(r))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, amountResult(traceID, claimed))
	}
}
