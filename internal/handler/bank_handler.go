package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studiku/quizbank-backend/internal/bank"
	"github.com/studiku/quizbank-backend/internal/model"
	"github.com/studiku/quizbank-backend/internal/persist"
	"github.com/studiku/quizbank-backend/internal/progress"
	"github.com/studiku/quizbank-backend/internal/response"
	"github.com/studiku/quizbank-backend/internal/validator"
)

// BankHandler serves question-bank CRUD, stats, and per-bank
// learning-progress maintenance.
type BankHandler struct {
	banks   *bank.Repository
	tracker *progress.Tracker
	history *persist.History
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(banks *bank.Repository, tracker *progress.Tracker, history *persist.History) *BankHandler {
	return &BankHandler{banks: banks, tracker: tracker, history: history}
}

// ListBanks godoc
// GET /api/v1/banks
func (h *BankHandler) ListBanks(c *gin.Context) {
	banks, err := h.banks.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"banks": banks})
}

// GetBank godoc
// GET /api/v1/banks/:bank_id
func (h *BankHandler) GetBank(c *gin.Context) {
	b, err := h.banks.Get(c.Request.Context(), c.Param("bank_id"))
	if err != nil {
		failBank(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// CreateBank godoc
// POST /api/v1/banks
func (h *BankHandler) CreateBank(c *gin.Context) {
	var req model.CreateBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	b, err := h.banks.Add(c.Request.Context(), req.Name, req.Questions)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

// UpdateBank godoc
// PUT /api/v1/banks/:bank_id
func (h *BankHandler) UpdateBank(c *gin.Context) {
	var req model.UpdateBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	b, err := h.banks.Update(c.Request.Context(), c.Param("bank_id"), req.Questions)
	if err != nil {
		failBank(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// RenameBank godoc
// PATCH /api/v1/banks/:bank_id/name
func (h *BankHandler) RenameBank(c *gin.Context) {
	var req model.RenameBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	b, err := h.banks.Rename(c.Request.Context(), c.Param("bank_id"), req.Name)
	if err != nil {
		failBank(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// CopyBank godoc
// POST /api/v1/banks/:bank_id/copy
func (h *BankHandler) CopyBank(c *gin.Context) {
	b, err := h.banks.Copy(c.Request.Context(), c.Param("bank_id"))
	if err != nil {
		failBank(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

// DeleteBank godoc
// DELETE /api/v1/banks/:bank_id
// Deleting a bank cascades: its learning progress and exam history go
// with it.
func (h *BankHandler) DeleteBank(c *gin.Context) {
	ctx := c.Request.Context()
	bankID := c.Param("bank_id")

	if err := h.banks.Delete(ctx, bankID); err != nil {
		failBank(c, err)
		return
	}
	if err := h.history.DeleteByBank(ctx, bankID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "bank deleted"})
}

// GetBankStats godoc
// GET /api/v1/banks/:bank_id/stats
func (h *BankHandler) GetBankStats(c *gin.Context) {
	stats, err := h.banks.Stats(c.Request.Context(), c.Param("bank_id"))
	if err != nil {
		failBank(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// GetOverallStats godoc
// GET /api/v1/stats
func (h *BankHandler) GetOverallStats(c *gin.Context) {
	stats, err := h.banks.OverallStats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// GetBankProgress godoc
// GET /api/v1/banks/:bank_id/progress
func (h *BankHandler) GetBankProgress(c *gin.Context) {
	ctx := c.Request.Context()

	if _, err := h.banks.Get(ctx, c.Param("bank_id")); err != nil {
		failBank(c, err)
		return
	}
	prog, err := h.tracker.Get(ctx, c.Param("bank_id"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, prog)
}

// ResetBankProgress godoc
// DELETE /api/v1/banks/:bank_id/progress
func (h *BankHandler) ResetBankProgress(c *gin.Context) {
	ctx := c.Request.Context()

	if _, err := h.banks.Get(ctx, c.Param("bank_id")); err != nil {
		failBank(c, err)
		return
	}
	if err := h.tracker.Reset(ctx, c.Param("bank_id")); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "progress reset"})
}

// failBank maps bank repository errors onto the response envelope.
func failBank(c *gin.Context, err error) {
	switch {
	case errors.Is(err, bank.ErrBankNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrBankNotFound)
	case errors.Is(err, bank.ErrNameTaken):
		response.Fail(c, http.StatusConflict, response.ErrNameTaken)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
