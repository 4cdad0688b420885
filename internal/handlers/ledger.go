package handlers

import (
	"errors"
	"log"
	"net/http"

	"construction-backoffice/internal/database"
	"construction-backoffice/internal/ledger"
	"construction-backoffice/internal/models"
	"construction-backoffice/internal/search"

	"github.com/gin-gonic/gin"
)

// LedgerHandler serves per-flat financial operations.
type LedgerHandler struct {
	store  database.Store
	engine *ledger.Engine
	search *search.SearchClient
}

// NewLedgerHandler creates a new ledger handler. searchClient may be nil.
func NewLedgerHandler(store database.Store, searchClient *search.SearchClient) *LedgerHandler {
	return &LedgerHandler{
		store:  store,
		engine: ledger.NewEngine(store),
		search: searchClient,
	}
}

// flatResponse wraps a flat with its derived ledger values. Pending is never
// stored; a negative pending renders as a credit, not an error.
func flatResponse(f *models.Flat) gin.H {
	pending := ledger.PendingAmount(f)
	return gin.H{
		"flat":             f,
		"total_paid":       ledger.TotalPaid(f),
		"extra_work_total": ledger.ExtraWorkTotal(f),
		"pending_amount":   pending,
		"credit":           pending.IsNegative(),
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		ledger.ErrMissingAmount, ledger.ErrInvalidAmount,
		ledger.ErrMissingDate, ledger.ErrInvalidDate,
		ledger.ErrMissingDescription, ledger.ErrInvalidCost,
		ledger.ErrInvalidStatus, ledger.ErrInvalidTotal,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (h *LedgerHandler) respondMutationError(c *gin.Context, err error) {
	if isValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Store failure: the in-memory flat was not committed, the caller must
	// not assume the save went through.
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (h *LedgerHandler) loadFlat(c *gin.Context) (*models.Flat, bool) {
	flat, err := h.store.GetFlat(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "flat not found"})
		return nil, false
	}
	return flat, true
}

// GetFlat returns one flat with its ledger entries and derived balances.
func (h *LedgerHandler) GetFlat(c *gin.Context) {
	flat, ok := h.loadFlat(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, flatResponse(flat))
}

// UpdateDetails applies direct attribute edits (type, area, rate, buyer).
func (h *LedgerHandler) UpdateDetails(c *gin.Context) {
	flat, ok := h.loadFlat(c)
	if !ok {
		return
	}

	var req ledger.DetailsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.UpdateDetails(flat, req); err != nil {
		h.respondMutationError(c, err)
		return
	}

	h.indexFlat(flat)
	c.JSON(http.StatusOK, flatResponse(flat))
}

// SetStatusRequest carries a status transition.
type SetStatusRequest struct {
	Status models.FlatStatus `json:"status" binding:"required"`
}

// SetStatus moves a flat between Available, Booked and Sold.
func (h *LedgerHandler) SetStatus(c *gin.Context) {
	flat, ok := h.loadFlat(c)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.SetStatus(flat, req.Status); err != nil {
		h.respondMutationError(c, err)
		return
	}

	h.indexFlat(flat)
	c.JSON(http.StatusOK, flatResponse(flat))
}

// SetTotalAmountRequest carries a deal-value edit.
type SetTotalAmountRequest struct {
	TotalAmount string `json:"total_amount" binding:"required"`
}

// SetTotalAmount edits the agreed deal value.
func (h *LedgerHandler) SetTotalAmount(c *gin.Context) {
	flat, ok := h.loadFlat(c)
	if !ok {
		return
	}

	var req SetTotalAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.SetTotalAmount(flat, req.TotalAmount); err != nil {
		h.respondMutationError(c, err)
		return
	}

	h.indexFlat(flat)
	c.JSON(http.StatusOK, flatResponse(flat))
}

// AddPayment appends one payment to the flat's history.
func (h *LedgerHandler) AddPayment(c *gin.Context) {
	flat, ok := h.loadFlat(c)
	if !ok {
		return
	}

	var req ledger.PaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.engine.AppendPayment(flat, req)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}

	h.indexFlat(flat)
	resp := flatResponse(flat)
	resp["payment"] = payment
	c.JSON(http.StatusCreated, resp)
}

// AddExtraWork appends one extra-work item to the flat.
func (h *LedgerHandler) AddExtraWork(c *gin.Context) {
	flat, ok := h.loadFlat(c)
	if !ok {
		return
	}

	var req ledger.ExtraWorkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	work, err := h.engine.AppendExtraWork(flat, req)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}

	resp := flatResponse(flat)
	resp["extra_work"] = work
	c.JSON(http.StatusCreated, resp)
}

// AddDocumentRequest attaches an opaque file reference.
type AddDocumentRequest struct {
	FileRef string `json:"file_ref" binding:"required"`
	Label   string `json:"label"`
}

// AddDocument attaches a document reference to the flat.
func (h *LedgerHandler) AddDocument(c *gin.Context) {
	flat, ok := h.loadFlat(c)
	if !ok {
		return
	}

	var req AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.engine.AppendDocument(flat, req.FileRef, req.Label)
	if err != nil {
		h.respondMutationError(c, err)
		return
	}

	resp := flatResponse(flat)
	resp["document"] = doc
	c.JSON(http.StatusCreated, resp)
}

// indexFlat refreshes one flat's search document, best effort.
func (h *LedgerHandler) indexFlat(f *models.Flat) {
	if h.search == nil {
		return
	}
	if err := h.search.IndexFlat(f); err != nil {
		log.Printf("Ledger: failed to index flat %s: %v", f.ID, err)
	}
}
