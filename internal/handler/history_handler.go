package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studiku/quizbank-backend/internal/persist"
	"github.com/studiku/quizbank-backend/internal/response"
)

// HistoryHandler serves the capped exam-record list.
type HistoryHandler struct {
	history *persist.History
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history *persist.History) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// ListRecords godoc
// GET /api/v1/history?bank_id=...
// Newest first; the optional bank_id query narrows to one bank.
func (h *HistoryHandler) ListRecords(c *gin.Context) {
	records, err := h.history.List(c.Request.Context(), c.Query("bank_id"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"records": records})
}
