package httpserver

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"aiinsight/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	Logger         *slog.Logger
	InsightHandler http.Handler
	CORSOrigins    []string
	// Static корень собранного фронтенда; nil отключает раздачу статики.
	Static fs.FS
}

var knownMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// NewRouter собирает chi-роутер с общими middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.CORS(deps.CORSOrigins))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Post("/insight", deps.InsightHandler.ServeHTTP)

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		if allowed := allowedMethods(r, req.URL.Path); len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
		}
		WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	notFound := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "not found")
	})
	if deps.Static != nil {
		r.NotFound(NewStaticHandler(deps.Static, notFound).ServeHTTP)
	} else {
		r.NotFound(notFound)
	}

	return r
}

func allowedMethods(routes chi.Routes, path string) []string {
	var allowed []string
	for _, method := range knownMethods {
		if routes.Match(chi.NewRouteContext(), method, path) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}
