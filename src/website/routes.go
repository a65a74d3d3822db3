package website

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nterray/discourse/src/config"
	"github.com/nterray/discourse/src/db"
	"github.com/nterray/discourse/src/logging"
	"github.com/nterray/discourse/src/models"
	"github.com/nterray/discourse/src/perf"
	"github.com/nterray/discourse/src/topicview"
)

type websiteRoutes struct {
	conn    db.ConnOrTx
	stores  topicview.Stores
	viewCfg topicview.Config

	// Resolves the signed-in user by id. Split out from the handler so
	// tests can run the full router without a database.
	fetchUser func(ctx context.Context, userID int) (*models.User, error)
}

func NewWebsiteRoutes(conn db.ConnOrTx, stores topicview.Stores) http.Handler {
	routes := &websiteRoutes{
		conn:   conn,
		stores: stores,
		viewCfg: topicview.Config{
			PostsPerPage:     topicview.DefaultPostsPerPage,
			InternalLinkBase: config.Config.BaseUrl,
		},
	}
	routes.fetchUser = routes.lookupUser
	return routes.router()
}

func (routes *websiteRoutes) router() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(observeMiddleware)
	router.Use(panicMiddleware)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.Route("/t", func(r chi.Router) {
		r.Use(routes.currentUserMiddleware)
		r.Get("/{topicid}", routes.topic)
		r.Get("/{slug}/{topicid}", routes.topic)
	})

	return router
}

// Attaches a request-scoped logger and perf collector to the context, and
// logs every request on the way out.
func observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := perf.MakeNewRequestPerf(r.URL.Path, r.Method)
		logger := logging.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Logger()

		ctx := perf.AttachPerf(logging.AttachLoggerToContext(&logger, r.Context()), p)
		next.ServeHTTP(w, r.WithContext(ctx))

		p.EndRequest()
		logger.Debug().Dur("duration", p.End.Sub(p.Start)).Msg("Served request")
	})
}

func panicMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logging.LogPanicValue(logging.ExtractLogger(r.Context()), recovered, "Panic during request")
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
