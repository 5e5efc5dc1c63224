package routes

import (
	"net/http"

	"github.com/dinescout/backend/internal/api/handlers"
	"github.com/dinescout/backend/internal/api/middleware"
	"github.com/dinescout/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	assistantHandler  *handlers.AssistantHandler
	restaurantHandler *handlers.RestaurantHandler
	reviewHandler     *handlers.ReviewHandler
	preferenceHandler *handlers.PreferenceHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	assistantHandler *handlers.AssistantHandler,
	restaurantHandler *handlers.RestaurantHandler,
	reviewHandler *handlers.ReviewHandler,
	preferenceHandler *handlers.PreferenceHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		assistantHandler:  assistantHandler,
		restaurantHandler: restaurantHandler,
		reviewHandler:     reviewHandler,
		preferenceHandler: preferenceHandler,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Assistant endpoint
	r.mux.HandleFunc("POST /api/v1/assistant/chat", r.assistantHandler.Chat)

	// Restaurant catalog endpoints
	r.mux.HandleFunc("GET /api/v1/restaurants", r.restaurantHandler.ListRestaurants)
	r.mux.HandleFunc("GET /api/v1/restaurants/search", r.restaurantHandler.SearchRestaurants)
	r.mux.HandleFunc("POST /api/v1/restaurants", r.restaurantHandler.CreateRestaurant)
	r.mux.HandleFunc("GET /api/v1/restaurants/{id}", r.restaurantHandler.GetRestaurant)
	r.mux.HandleFunc("PUT /api/v1/restaurants/{id}", r.restaurantHandler.UpdateRestaurant)
	r.mux.HandleFunc("DELETE /api/v1/restaurants/{id}", r.restaurantHandler.DeleteRestaurant)

	// Review endpoints
	r.mux.HandleFunc("POST /api/v1/restaurants/{id}/reviews", r.reviewHandler.CreateReview)
	r.mux.HandleFunc("GET /api/v1/restaurants/{id}/reviews", r.reviewHandler.ListReviews)

	// Preference endpoints
	r.mux.HandleFunc("GET /api/v1/users/{id}/preferences", r.preferenceHandler.GetPreferences)
	r.mux.HandleFunc("PUT /api/v1/users/{id}/preferences", r.preferenceHandler.SavePreferences)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
