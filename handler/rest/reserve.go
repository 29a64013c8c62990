package rest

import (
	"boostlend/core"
	"boostlend/handler/param"
	"boostlend/handler/render"
	"boostlend/handler/views"
	"net/http"

	"github.com/go-chi/chi"
)

func reservesHandler(pool Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reserves := pool.Reserves()

		items := make([]views.Reserve, 0, len(reserves))
		for _, data := range reserves {
			items = append(items, views.ReserveFrom(data))
		}

		render.JSON(w, items)
	}
}

func reserveHandler(pool Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset, err := param.Address(chi.URLParam(r, "asset"))
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		data, ok := pool.Reserve(asset)
		if !ok {
			render.Error(w, core.ErrNoActiveReserve)
			return
		}

		render.JSON(w, views.ReserveFrom(data))
	}
}

func positionsHandler(pool Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := param.Address(chi.URLParam(r, "user"))
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, views.AccountFrom(user, pool.Positions(user), pool.Lock(user)))
	}
}
