package model

// StartExamRequest is the payload for starting an exam session. Mode
// selects the question-count variant: "legacy" takes a flat total,
// "typed" takes per-type quotas. Omitted scores fall back to the
// per-type defaults.
type StartExamRequest struct {
	BankID        string `json:"bank_id" binding:"required"`
	CandidateName string `json:"candidate_name" binding:"max=255"`
	Mode          string `json:"mode" binding:"required,oneof=legacy typed"`

	TotalCount    int `json:"total_count" binding:"min=0"`
	SingleCount   int `json:"single_count" binding:"min=0"`
	MultipleCount int `json:"multiple_count" binding:"min=0"`
	JudgeCount    int `json:"judge_count" binding:"min=0"`

	SingleScore   float64 `json:"single_score" binding:"min=0"`
	MultipleScore float64 `json:"multiple_score" binding:"min=0"`
	JudgeScore    float64 `json:"judge_score" binding:"min=0"`

	DurationMinutes int `json:"duration_minutes" binding:"required,min=1"`
}

// StartLearningRequest is the payload for starting a learning session.
type StartLearningRequest struct {
	BankID     string `json:"bank_id" binding:"required"`
	Order      string `json:"order" binding:"required,oneof=sequential random"`
	Scope      string `json:"scope" binding:"omitempty,oneof=all unanswered incorrect"`
	ReviewMode bool   `json:"review_mode"`
}

// AnswerRequest records an answer for one question. Index is a pointer
// so index 0 survives the required check.
type AnswerRequest struct {
	Index  *int   `json:"index" binding:"required"`
	Answer string `json:"answer"`
}

// NavigateRequest moves the cursor one step.
type NavigateRequest struct {
	Direction int `json:"direction" binding:"required,oneof=1 -1"`
}

// IndexRequest targets one question by index (jump, mark, reveal).
type IndexRequest struct {
	Index *int `json:"index" binding:"required"`
}
