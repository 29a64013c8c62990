package rest

import (
	"boostlend/core"
	"boostlend/handler/param"
	"boostlend/handler/render"
	"boostlend/handler/views"
	"net/http"

	"github.com/go-chi/chi"
)

func eventsHandler(events core.EventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			From  int64 `json:"from"`
			Limit int   `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Limit <= 0 {
			params.Limit = 100
		}

		records, err := events.List(r.Context(), params.From, params.Limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.EventsFrom(records))
	}
}

func traceEventsHandler(events core.EventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := events.ListByTrace(r.Context(), chi.URLParam(r, "trace"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.EventsFrom(records))
	}
}
