package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing-backend/internal/models"
	"billing-backend/internal/store"
)

type TreatmentHandler struct {
	Store *store.Store
}

type treatmentRequest struct {
	ClientID          string           `json:"client_id"`
	TreatmentMethodID string           `json:"treatment_method_id"`
	TreatmentDate     models.Date      `json:"treatment_date"`
	DurationHours     *decimal.Decimal `json:"duration_hours"`
	Notes             string           `json:"notes"`
}

func NewTreatmentHandler(s *store.Store) *TreatmentHandler {
	return &TreatmentHandler{Store: s}
}

func (h *TreatmentHandler) List(c *gin.Context) {
	var filter store.TreatmentFilter
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		filter.ClientID = &clientID
	}
	if raw := c.Query("billed"); raw != "" {
		billed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid billed"})
			return
		}
		filter.Billed = &billed
	}

	treatments, err := h.Store.ListTreatments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, treatments)
}

func (h *TreatmentHandler) Create(c *gin.Context) {
	var req treatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date or duration format"})
		return
	}

	clientID, err := optionalUUID(req.ClientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
		return
	}
	methodID, err := optionalUUID(req.TreatmentMethodID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid treatment_method_id"})
		return
	}

	treatment, err := h.Store.CreateTreatment(c.Request.Context(), store.TreatmentInput{
		ClientID:          clientID,
		TreatmentMethodID: methodID,
		TreatmentDate:     req.TreatmentDate,
		DurationHours:     req.DurationHours,
		Notes:             req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, treatment)
}

func (h *TreatmentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteTreatment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// optionalUUID leaves an empty value as uuid.Nil so the store can report the
// missing field.
func optionalUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(value)
}
