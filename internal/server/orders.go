package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jogardn/hoodie-store/pkg/models"
)

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateOrderCreate(req); msg != "" {
		s.respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	order, err := s.orders.Create(r.Context(), req)
	if err != nil {
		s.respondStoreError(w, err, "Order not found")
		return
	}

	s.publishOrderCreated(order)
	s.respondWithJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	order, err := s.orders.GetByID(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err, "Order not found")
		return
	}

	s.respondWithJSON(w, http.StatusOK, order)
}

func (s *Server) handleListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	limit, offset := 0, 0
	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		offset = n
	}

	list, err := s.orders.ListForUser(r.Context(), userID, limit, offset)
	if err != nil {
		s.respondStoreError(w, err, "Order not found")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"orders": list,
		"count":  len(list),
	})
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.OrderStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.OrderStatus.Valid() {
		s.respondWithError(w, http.StatusBadRequest, "invalid order status")
		return
	}

	order, err := s.orders.UpdateStatus(r.Context(), id, req.OrderStatus)
	if err != nil {
		s.respondStoreError(w, err, "Order not found")
		return
	}

	s.publishStatusChanged(order)
	s.respondWithJSON(w, http.StatusOK, order)
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.OrderUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateOrderUpdate(req); msg != "" {
		s.respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	order, err := s.orders.Update(r.Context(), id, req)
	if err != nil {
		s.respondStoreError(w, err, "Order not found")
		return
	}

	if req.OrderStatus != nil {
		s.publishStatusChanged(order)
	}
	s.respondWithJSON(w, http.StatusOK, order)
}

func (s *Server) publishOrderCreated(order *models.Order) {
	if s.producer != nil {
		if err := s.producer.PublishOrderCreated(order); err != nil {
			s.logger.WithError(err).Error("Failed to publish order created event")
		}
	}
	if s.hub != nil {
		s.hub.Broadcast("order_created", order)
	}
}

func (s *Server) publishStatusChanged(order *models.Order) {
	if s.producer != nil {
		if err := s.producer.PublishOrderStatusChanged(order); err != nil {
			s.logger.WithError(err).Error("Failed to publish order status event")
		}
	}
	if s.hub != nil {
		s.hub.Broadcast("order_status_changed", order)
	}
}

func validateOrderCreate(req models.OrderCreate) string {
	if req.UserID == "" {
		return "user_id is required"
	}
	if len(req.Items) == 0 {
		return "order must contain at least one item"
	}
	for _, item := range req.Items {
		if item.ProductID == "" {
			return "item product_id is required"
		}
		if item.Quantity <= 0 {
			return "item quantity must be positive"
		}
		if !item.Price.IsPositive() {
			return "item price must be positive"
		}
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return "shipping_address is required"
	}
	return ""
}

func validateOrderUpdate(req models.OrderUpdate) string {
	if req.PaymentStatus != nil && !req.PaymentStatus.Valid() {
		return "invalid payment status"
	}
	if req.OrderStatus != nil && !req.OrderStatus.Valid() {
		return "invalid order status"
	}
	if req.ShippingAddress != nil && strings.TrimSpace(*req.ShippingAddress) == "" {
		return "shipping_address must not be empty"
	}
	return ""
}
