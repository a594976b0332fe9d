package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billing-backend/internal/store"
)

type DashboardHandler struct {
	Store *store.Store
}

func NewDashboardHandler(s *store.Store) *DashboardHandler {
	return &DashboardHandler{Store: s}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	stats, err := h.Store.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	company, err := h.Store.Company(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clients":             stats.Clients,
		"treatment_methods":   stats.TreatmentMethods,
		"unbilled_treatments": stats.UnbilledTreatments,
		"invoices":            stats.Invoices,
		"outstanding":         stats.OutstandingAmount,
		"revenue":             stats.PaidAmount,
		"currency":            company.Currency,
	})
}
