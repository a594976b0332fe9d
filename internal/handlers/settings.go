package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billing-backend/internal/models"
	"billing-backend/internal/store"
)

type SettingsHandler struct {
	Store *store.Store
}

func NewSettingsHandler(s *store.Store) *SettingsHandler {
	return &SettingsHandler{Store: s}
}

func (h *SettingsHandler) GetCompany(c *gin.Context) {
	company, err := h.Store.Company(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *SettingsHandler) UpdateCompany(c *gin.Context) {
	var req models.Company
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	company, err := h.Store.SaveCompany(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}
