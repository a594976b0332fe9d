package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"billing-backend/internal/apperr"
	"billing-backend/internal/documents"
	"billing-backend/internal/invoicing"
	"billing-backend/internal/models"
	"billing-backend/internal/store"
)

type InvoiceHandler struct {
	Store     *store.Store
	Generator *invoicing.Generator
	Documents *documents.Service
}

type generateRequest struct {
	Period string `json:"period"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type statusRequest struct {
	Status models.InvoiceStatus `json:"status"`
}

func NewInvoiceHandler(s *store.Store, generator *invoicing.Generator, docs *documents.Service) *InvoiceHandler {
	return &InvoiceHandler{Store: s, Generator: generator, Documents: docs}
}

func (h *InvoiceHandler) List(c *gin.Context) {
	var filter store.InvoiceFilter
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		filter.ClientID = &clientID
	}
	if raw := c.Query("status"); raw != "" {
		filter.Status = models.InvoiceStatus(raw)
		if !filter.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}

	invoices, err := h.Store.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	invoice, err := h.Store.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	invoice, err := h.Store.SetInvoiceStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// Generate bills unbilled treatments. The body is optional; without it every
// unbilled treatment is billed.
func (h *InvoiceHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	period, err := invoicing.ParsePeriod(req.Period, req.From, req.To, h.Generator.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.Generator.Generate(c.Request.Context(), period)
	if err != nil {
		body := gin.H{"error": apperr.Message(err)}
		if result != nil {
			body["invoices"] = result.Invoices
			body["skipped"] = result.Skipped
			body["run_id"] = result.RunID
		}
		c.JSON(errorStatus(err), body)
		return
	}

	status := http.StatusOK
	message := "No new invoices generated"
	if len(result.Invoices) > 0 {
		status = http.StatusCreated
		message = fmt.Sprintf("%d invoice(s) generated", len(result.Invoices))
	}
	c.JSON(status, gin.H{
		"message":  message,
		"period":   result.Period,
		"invoices": result.Invoices,
		"skipped":  result.Skipped,
		"run_id":   result.RunID,
	})
}

func (h *InvoiceHandler) Runs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	runs, err := h.Store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (h *InvoiceHandler) PDF(c *gin.Context) {
	h.download(c, documents.FormatPDF)
}

func (h *InvoiceHandler) XLS(c *gin.Context) {
	h.download(c, documents.FormatXLSX)
}

func (h *InvoiceHandler) download(c *gin.Context, format documents.Format) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	file, err := h.Documents.Render(c.Request.Context(), id, format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+file.Name)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
