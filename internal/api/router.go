package api

import (
	"net/http"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/service"
	"github.com/alexivanou/communes-api/internal/stats"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, cfg *config.Config, logger *zap.Logger) *mux.Router {
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)
	limiter := NewIPRateLimiter(cfg.RateLimit, logger)
	auth := Authenticate(cfg.Auth.JWTSecret, logger)

	router := mux.NewRouter()
	router.Use(RequestLogger(logger), CORS(cfg.Server.AllowedOrigins))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	router.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	// Cities. Literal segments go before {codeInsee}.
	router.HandleFunc("/cities", handler.ListCities).Methods("GET")
	router.HandleFunc("/cities/random", handler.RandomCity).Methods("GET")
	router.HandleFunc("/cities/facets", handler.GetFacets).Methods("GET")
	router.HandleFunc("/cities/search/{input}", handler.SearchCities).Methods("GET")
	router.HandleFunc("/cities/{codeInsee}", handler.GetCity).Methods("GET")
	router.HandleFunc("/cities/{lat}/{lng}", handler.FindNearestCity).Methods("GET")

	// Descriptions call paid or rate-limited providers
	router.Handle("/descriptions", limiter.Wrap(http.HandlerFunc(handler.GetDescription))).Methods("GET")
	router.Handle("/descriptions", limiter.Wrap(http.HandlerFunc(handler.DeleteDescription))).Methods("DELETE")
	router.Handle("/descriptions/images", limiter.Wrap(http.HandlerFunc(handler.GetImages))).Methods("GET")
	router.Handle("/descriptions/weather", limiter.Wrap(http.HandlerFunc(handler.GetWeather))).Methods("GET")

	router.HandleFunc("/users", handler.CreateUser).Methods("POST")
	router.HandleFunc("/users/{externalId}", handler.GetUser).Methods("GET")
	router.HandleFunc("/users/{externalId}", handler.UpdateUser).Methods("PUT")

	router.HandleFunc("/bookmarks/{externalId}", handler.ListBookmarks).Methods("GET")
	router.HandleFunc("/bookmarks/{externalId}", handler.AddBookmark).Methods("POST")
	router.HandleFunc("/bookmarks/{externalId}", handler.DeleteBookmark).Methods("DELETE")
	router.HandleFunc("/bookmarks/{userId}/{insee}", handler.CheckBookmark).Methods("GET")

	router.HandleFunc("/ratings/heatmap", handler.GetHeatmap).Methods("GET")
	router.HandleFunc("/ratings/{insee}", handler.GetRatingSummary).Methods("GET")
	router.Handle("/ratings", auth(http.HandlerFunc(handler.RateCity))).Methods("POST")

	// Preflight requests only need the CORS middleware
	router.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return router
}
