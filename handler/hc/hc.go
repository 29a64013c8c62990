package hc

import (
	"boostlend/handler/render"
	"boostlend/pkg/lending"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Reserves reports the reserves held in memory by the pool
type Reserves interface {
	Reserves() []*lending.ReserveData
}

// Handle health check reporting the build version, the uptime and the state
// of the reserves loaded by the pool
func Handle(version string, reserves Reserves) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(version, reserves))
	return r
}

func handle(version string, reserves Reserves) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			active, frozen int
			lastAccrual    int64
		)
		for _, data := range reserves.Reserves() {
			if !data.Reserve.Active {
				continue
			}

			active++
			if data.Reserve.Frozen {
				frozen++
			}
			if ts := data.Reserve.LastUpdateTimestamp; ts > lastAccrual {
				lastAccrual = ts
			}
		}

		status := "ok"
		if active == 0 {
			status = "no active reserves"
		}

		render.JSON(w, render.H{
			"service":         "boostlend",
			"status":          status,
			"version":         version,
			"uptime":          time.Since(b).Truncate(time.Millisecond).String(),
			"active_reserves": active,
			"frozen_reserves": frozen,
			"last_accrual":    lastAccrual,
		})
	}
}
