package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studiku/quizbank-backend/internal/bank"
	"github.com/studiku/quizbank-backend/internal/model"
	"github.com/studiku/quizbank-backend/internal/response"
	"github.com/studiku/quizbank-backend/internal/validator"
)

// SettingHandler serves the application settings blob.
type SettingHandler struct {
	settings *bank.SettingsStore
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(settings *bank.SettingsStore) *SettingHandler {
	return &SettingHandler{settings: settings}
}

// GetSettings godoc
// GET /api/v1/settings
func (h *SettingHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// UpdateSettings godoc
// PUT /api/v1/settings
func (h *SettingHandler) UpdateSettings(c *gin.Context) {
	var req model.Settings
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.settings.Put(c.Request.Context(), req); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, req)
}
