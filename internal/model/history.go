package model

// ExamRecord is one entry in the exam history list, appended when an
// exam session is submitted. The history is capped to the most recent
// entries; older records roll off.
type ExamRecord struct {
	ID              string  `json:"id"`
	BankID          string  `json:"bank_id"`
	BankName        string  `json:"bank_name"`
	CandidateName   string  `json:"candidate_name,omitempty"`
	Score           float64 `json:"score"`
	MaxScore        float64 `json:"max_score"`
	CorrectCount    int     `json:"correct_count"`
	WrongCount      int     `json:"wrong_count"`
	SkippedCount    int     `json:"skipped_count"`
	TotalQuestions  int     `json:"total_questions"`
	DurationMinutes int     `json:"duration_minutes"`
	StartTime       int64   `json:"start_time"`
	CompletedTime   int64   `json:"completed_time"`
}
