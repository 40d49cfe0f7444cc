package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/jogardn/hoodie-store/pkg/models"
)

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateProductCreate(req); msg != "" {
		s.respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	product, err := s.products.Create(r.Context(), req)
	if err != nil {
		s.respondStoreError(w, err, "Product not found")
		return
	}

	s.respondWithJSON(w, http.StatusCreated, product)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	product, err := s.products.GetByID(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err, "Product not found")
		return
	}

	s.respondWithJSON(w, http.StatusOK, product)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter, msg := parseProductFilter(r)
	if msg != "" {
		s.respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	list, err := s.products.List(r.Context(), filter)
	if err != nil {
		s.respondStoreError(w, err, "Product not found")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"products": list,
		"count":    len(list),
	})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateProductUpdate(req); msg != "" {
		s.respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	product, err := s.products.Update(r.Context(), id, req)
	if err != nil {
		s.respondStoreError(w, err, "Product not found")
		return
	}

	s.respondWithJSON(w, http.StatusOK, product)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted, err := s.products.Delete(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err, "Product not found")
		return
	}
	if !deleted {
		s.respondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Product deleted",
	})
}

func validateProductCreate(req models.ProductCreate) string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if !req.Price.IsPositive() {
		return "price must be positive"
	}
	if req.Stock < 0 {
		return "stock must not be negative"
	}
	if msg := validateRating(req.Rating); msg != "" {
		return msg
	}
	return ""
}

func validateProductUpdate(req models.ProductUpdate) string {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return "name must not be empty"
	}
	if req.Price != nil && !req.Price.IsPositive() {
		return "price must be positive"
	}
	if req.Stock != nil && *req.Stock < 0 {
		return "stock must not be negative"
	}
	if req.Rating != nil {
		if msg := validateRating(*req.Rating); msg != "" {
			return msg
		}
	}
	return ""
}

func validateRating(rating decimal.NullDecimal) string {
	if !rating.Valid {
		return ""
	}
	if rating.Decimal.IsNegative() || rating.Decimal.GreaterThan(decimal.NewFromInt(5)) {
		return "rating must be between 0 and 5"
	}
	return ""
}

func parseProductFilter(r *http.Request) (models.ProductFilter, string) {
	q := r.URL.Query()
	filter := models.ProductFilter{
		Category: q.Get("category"),
		Color:    q.Get("color"),
		Size:     q.Get("size"),
		Gender:   q.Get("gender"),
		FitType:  q.Get("fit_type"),
		Search:   q.Get("search"),
	}

	for key, dst := range map[string]**decimal.Decimal{
		"min_price":  &filter.MinPrice,
		"max_price":  &filter.MaxPrice,
		"min_rating": &filter.MinRating,
	} {
		if raw := q.Get(key); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return filter, "invalid " + key
			}
			*dst = &d
		}
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, "invalid limit"
		}
		filter.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, "invalid offset"
		}
		filter.Offset = n
	}

	return filter, ""
}
