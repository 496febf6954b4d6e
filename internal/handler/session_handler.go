package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studiku/quizbank-backend/internal/bank"
	"github.com/studiku/quizbank-backend/internal/model"
	"github.com/studiku/quizbank-backend/internal/response"
	"github.com/studiku/quizbank-backend/internal/scoring"
	"github.com/studiku/quizbank-backend/internal/service"
	"github.com/studiku/quizbank-backend/internal/session"
	"github.com/studiku/quizbank-backend/internal/validator"
)

// SessionHandler drives the exam/learning session flows over HTTP.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// SessionView is the client-facing snapshot of a session. Correct
// answers and analysis are blanked for exams until submission.
type SessionView struct {
	Kind             session.Kind                    `json:"kind"`
	BankID           string                          `json:"bank_id"`
	BankName         string                          `json:"bank_name"`
	CandidateName    string                          `json:"candidate_name,omitempty"`
	Questions        []model.Question                `json:"questions"`
	CurrentIndex     int                             `json:"current_index"`
	TotalQuestions   int                             `json:"total_questions"`
	AnsweredCount    int                             `json:"answered_count"`
	Answers          map[int]string                  `json:"answers"`
	Results          map[int]*session.ResultEntry    `json:"results,omitempty"`
	Marked           []int                           `json:"marked"`
	Viewed           []int                           `json:"viewed,omitempty"`
	Submitted        bool                            `json:"submitted"`
	StartTime        int64                           `json:"start_time"`
	RemainingSeconds *int64                          `json:"remaining_seconds,omitempty"`
}

func buildView(s *session.Session) SessionView {
	v := SessionView{
		Kind:           s.Kind(),
		BankID:         s.Config.BankID,
		BankName:       s.Config.BankName,
		CandidateName:  s.Config.CandidateName,
		CurrentIndex:   s.CurrentIndex,
		TotalQuestions: s.Len(),
		AnsweredCount:  s.AnsweredCount(),
		Answers:        s.Answers,
		Marked:         s.MarkedList(),
		Submitted:      s.Submitted,
		StartTime:      s.StartTime.UnixMilli(),
	}

	hideAnswers := s.Kind() == session.KindExam && !s.Submitted
	if hideAnswers {
		v.Questions = model.CloneQuestions(s.Questions)
		for i := range v.Questions {
			v.Questions[i].Answer = ""
			v.Questions[i].Analysis = ""
		}
	} else {
		v.Questions = s.Questions
		v.Results = s.Results
	}

	if s.Kind() == session.KindLearning {
		v.Viewed = s.ViewedList()
	}
	if remaining, ok := session.Remaining(s); ok {
		secs := int64(remaining.Seconds())
		v.RemainingSeconds = &secs
	}
	return v
}

// StartExam godoc
// POST /api/v1/sessions/exam
func (h *SessionHandler) StartExam(c *gin.Context) {
	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cfg := session.ExamConfig{
		Mode:            session.ExamMode(req.Mode),
		TotalCount:      req.TotalCount,
		SingleCount:     req.SingleCount,
		MultipleCount:   req.MultipleCount,
		JudgeCount:      req.JudgeCount,
		SingleScore:     req.SingleScore,
		MultipleScore:   req.MultipleScore,
		JudgeScore:      req.JudgeScore,
		DurationMinutes: req.DurationMinutes,
	}
	sess, err := h.sessions.StartExam(c.Request.Context(), req.BankID, req.CandidateName, cfg)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusCreated, buildView(sess))
}

// StartLearning godoc
// POST /api/v1/sessions/learning
func (h *SessionHandler) StartLearning(c *gin.Context) {
	var req model.StartLearningRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	scope := service.LearningScope(req.Scope)
	if scope == "" {
		scope = service.ScopeAll
	}
	cfg := session.LearningConfig{
		Order:      session.Order(req.Order),
		ReviewMode: req.ReviewMode,
	}
	sess, err := h.sessions.StartLearning(c.Request.Context(), req.BankID, cfg, scope)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusCreated, buildView(sess))
}

// GetSession godoc
// GET /api/v1/sessions/:kind
// Returns the active session, resuming a saved one if needed.
func (h *SessionHandler) GetSession(c *gin.Context) {
	kind, ok := sessionKind(c)
	if !ok {
		return
	}

	sess, err := h.sessions.Resume(c.Request.Context(), kind)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, buildView(sess))
}

// Answer godoc
// POST /api/v1/sessions/:kind/answer
func (h *SessionHandler) Answer(c *gin.Context) {
	kind, ok := sessionKind(c)
	if !ok {
		return
	}
	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessions.Answer(c.Request.Context(), kind, *req.Index, req.Answer); err != nil {
		failSession(c, err)
		return
	}
	h.snapshot(c, kind)
}

// Navigate godoc
// POST /api/v1/sessions/:kind/navigate
func (h *SessionHandler) Navigate(c *gin.Context) {
	kind, ok := sessionKind(c)
	if !ok {
		return
	}
	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessions.Navigate(c.Request.Context(), kind, req.Direction); err != nil {
		failSession(c, err)
		return
	}
	h.snapshot(c, kind)
}

// Jump godoc
// POST /api/v1/sessions/:kind/jump
func (h *SessionHandler) Jump(c *gin.Context) {
	kind, ok := sessionKind(c)
	if !ok {
		return
	}
	var req model.IndexRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessions.Jump(c.Request.Context(), kind, *req.Index); err != nil {
		failSession(c, err)
		return
	}
	h.snapshot(c, kind)
}

// Mark godoc
// POST /api/v1/sessions/:kind/mark
func (h *SessionHandler) Mark(c *gin.Context) {
	kind, ok := sessionKind(c)
	if !ok {
		return
	}
	var req model.IndexRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessions.Mark(c.Request.Context(), kind, *req.Index); err != nil {
		failSession(c, err)
		return
	}
	h.snapshot(c, kind)
}

// Reveal godoc
// POST /api/v1/sessions/learning/reveal
func (h *SessionHandler) Reveal(c *gin.Context) {
	var req model.IndexRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessions.Reveal(c.Request.Context(), session.KindLearning, *req.Index); err != nil {
		failSession(c, err)
		return
	}
	h.snapshot(c, session.KindLearning)
}

// SubmitSession godoc
// POST /api/v1/sessions/:kind/submit
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	kind, ok := sessionKind(c)
	if !ok {
		return
	}

	result, err := h.sessions.Submit(c.Request.Context(), kind)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GetResult godoc
// GET /api/v1/sessions/:kind/result
func (h *SessionHandler) GetResult(c *gin.Context) {
	kind, ok := sessionKind(c)
	if !ok {
		return
	}

	result, err := h.sessions.Result(kind)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ExitSession godoc
// DELETE /api/v1/sessions/:kind
func (h *SessionHandler) ExitSession(c *gin.Context) {
	kind, ok := sessionKind(c)
	if !ok {
		return
	}

	if err := h.sessions.Exit(c.Request.Context(), kind); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "session ended"})
}

func (h *SessionHandler) snapshot(c *gin.Context, kind session.Kind) {
	sess := h.sessions.Current(kind)
	if sess == nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}
	response.Success(c, http.StatusOK, buildView(sess))
}

// sessionKind parses the :kind path parameter, failing the request on
// anything but exam/learning.
func sessionKind(c *gin.Context) (session.Kind, bool) {
	switch c.Param("kind") {
	case string(session.KindExam):
		return session.KindExam, true
	case string(session.KindLearning):
		return session.KindLearning, true
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidSessionMode)
		return "", false
	}
}

// failSession maps service and core errors onto the response envelope.
func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, bank.ErrBankNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrBankNotFound)
	case errors.Is(err, session.ErrInvalidIndex):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidIndex)
	case errors.Is(err, session.ErrInvalidConfig):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidConfig)
	case errors.Is(err, session.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrSessionSubmitted)
	case errors.Is(err, scoring.ErrNotSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotSubmitted)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
