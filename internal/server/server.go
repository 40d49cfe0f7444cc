// Package server is the HTTP boundary: it validates request payloads,
// hands them to the repositories and maps typed failures to status codes.
// The core below it never sees transport concerns.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/jogardn/hoodie-store/internal/events"
	"github.com/jogardn/hoodie-store/internal/orders"
	"github.com/jogardn/hoodie-store/internal/products"
	"github.com/jogardn/hoodie-store/internal/profiles"
	"github.com/jogardn/hoodie-store/internal/storage"
	"github.com/jogardn/hoodie-store/internal/websocket"
)

type Server struct {
	db       *storage.DB
	products *products.Repository
	orders   *orders.Repository
	profiles *profiles.Repository
	producer *events.Producer // nil when Kafka is disabled
	hub      *websocket.Hub   // nil when the dashboard feed is disabled
	logger   *logrus.Logger
	router   *mux.Router
}

func New(db *storage.DB, productRepo *products.Repository, orderRepo *orders.Repository,
	profileRepo *profiles.Repository, producer *events.Producer,
	hub *websocket.Hub, logger *logrus.Logger) *Server {

	s := &Server{
		db:       db,
		products: productRepo,
		orders:   orderRepo,
		profiles: profileRepo,
		producer: producer,
		hub:      hub,
		logger:   logger,
	}
	s.routes()
	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(loggingMiddleware(s.logger))

	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/products", s.handleCreateProduct).Methods("POST")
	r.HandleFunc("/products", s.handleListProducts).Methods("GET")
	r.HandleFunc("/products/{id}", s.handleGetProduct).Methods("GET")
	r.HandleFunc("/products/{id}", s.handleUpdateProduct).Methods("PUT")
	r.HandleFunc("/products/{id}", s.handleDeleteProduct).Methods("DELETE")

	r.HandleFunc("/orders", s.handleCreateOrder).Methods("POST")
	r.HandleFunc("/orders/{id}", s.handleGetOrder).Methods("GET")
	r.HandleFunc("/orders/{id}", s.handleUpdateOrder).Methods("PUT")
	r.HandleFunc("/orders/{id}/status", s.handleUpdateOrderStatus).Methods("PUT")
	r.HandleFunc("/users/{id}/orders", s.handleListUserOrders).Methods("GET")

	r.HandleFunc("/profiles", s.handleCreateProfile).Methods("POST")
	r.HandleFunc("/profiles/{user_id}", s.handleGetProfile).Methods("GET")
	r.HandleFunc("/profiles/{user_id}", s.handleUpdateProfile).Methods("PUT")

	if s.hub != nil {
		r.HandleFunc("/ws", s.hub.HandleWebSocket)
	}

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"service": "storefront",
			"error":   "database connection failed",
		})
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "storefront",
	})
}

func loggingMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"remote":   r.RemoteAddr,
				"duration": time.Since(start).Milliseconds(),
			}).Info("Request completed")
		})
	}
}
