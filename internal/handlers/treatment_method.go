package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"billing-backend/internal/models"
	"billing-backend/internal/store"
)

type TreatmentMethodHandler struct {
	Store *store.Store
}

// Rate accepts a JSON number or a numeric string.
type methodRequest struct {
	Name        string             `json:"name"`
	BillingType models.BillingType `json:"billing_type"`
	Rate        *decimal.Decimal   `json:"rate"`
}

func (r methodRequest) input() store.MethodInput {
	return store.MethodInput{Name: r.Name, BillingType: r.BillingType, Rate: r.Rate}
}

func NewTreatmentMethodHandler(s *store.Store) *TreatmentMethodHandler {
	return &TreatmentMethodHandler{Store: s}
}

func (h *TreatmentMethodHandler) List(c *gin.Context) {
	methods, err := h.Store.ListMethods(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, methods)
}

func (h *TreatmentMethodHandler) Create(c *gin.Context) {
	var req methodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rate format or request body"})
		return
	}

	method, err := h.Store.CreateMethod(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, method)
}

func (h *TreatmentMethodHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req methodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rate format or request body"})
		return
	}

	method, err := h.Store.UpdateMethod(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, method)
}

func (h *TreatmentMethodHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteMethod(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
