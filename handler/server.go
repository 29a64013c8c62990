package handler

import (
	"boostlend/core"
	"boostlend/handler/auth"
	"boostlend/handler/render"
	"boostlend/handler/rest"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/twitchtv/twirp"
)

// Server server
type Server struct {
	pool   rest.Pool
	events core.EventStore
	auth   *auth.Authenticator
}

// New new server function
func New(pool rest.Pool, events core.EventStore, authenticator *auth.Authenticator) Server {
	return Server{
		pool:   pool,
		events: events,
		auth:   authenticator,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(resetRoutePath)
	r.Use(render.WrapResponse(true))
	r.Use(auth.HandleAuthentication(s.auth))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, twirp.NotFoundError("not found"))
	})

	r.Mount("/", rest.Handle(s.pool, s.events))
	return r
}

func resetRoutePath(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if c := chi.RouteContext(ctx); c != nil {
			c.RoutePath = r.URL.Path
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
