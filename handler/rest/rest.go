package rest

import (
	"boostlend/core"
	"boostlend/handler/auth"
	"boostlend/handler/render"
	"boostlend/pkg/lending"
	"context"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi"
	"github.com/holiman/uint256"
)

// Pool operations and views served over http
type Pool interface {
	Deposit(ctx context.Context, params lending.DepositParams) error
	Withdraw(ctx context.Context, params lending.WithdrawParams) (*uint256.Int, error)
	Borrow(ctx context.Context, params lending.BorrowParams) error
	Repay(ctx context.Context, params lending.RepayParams) (*uint256.Int, error)
	LockBooster(ctx context.Context, user common.Address, tokenID uint64, asset common.Address) error
	ClaimRewards(ctx context.Context, asset, user common.Address) (*uint256.Int, error)

	Reserve(asset common.Address) (*lending.ReserveData, bool)
	Reserves() []*lending.ReserveData
	Positions(user common.Address) []*lending.Position
	Lock(user common.Address) *core.BoosterLock
}

// Handle handle rest api request. Operations act for the caller put in the
// context by auth.HandleAuthentication.
func Handle(pool Pool, events core.EventStore) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/reserves", reservesHandler(pool))
	router.Get("/reserves/{asset}", reserveHandler(pool))
	router.Get("/users/{user}/positions", positionsHandler(pool))
	router.Get("/events", eventsHandler(events))
	router.Get("/events/{trace}", traceEventsHandler(events))

	router.Group(func(r chi.Router) {
		r.Use(auth.LoginRequired)

		r.Post("/deposit", depositHandler(pool))
		r.Post("/withdraw", withdrawHandler(pool))
		r.Post("/borrow", borrowHandler(pool))
		r.Post("/repay", repayHandler(pool))
		r.Post("/boosters/lock", lockBoosterHandler(pool))
		r.Post("/rewards/claim", claimRewardsHandler(pool))
	})

	return router
}
