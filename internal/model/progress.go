package model

// AnsweredQuestion records the latest answer given to one bank question
// during learning sessions.
type AnsweredQuestion struct {
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
	AnsweredAt int64  `json:"answered_at"`
}

// BankProgress is the per-bank learning progress ledger. Completed
// counts distinct answered questions; Correct/Incorrect track the
// latest correctness of each, so re-answering a question flips the
// counters instead of double counting.
type BankProgress struct {
	Completed         int                         `json:"completed"`
	Correct           int                         `json:"correct"`
	Incorrect         int                         `json:"incorrect"`
	AnsweredQuestions map[string]AnsweredQuestion `json:"answered_questions"`
	LastStudied       *int64                      `json:"last_studied,omitempty"`
	StudyCount        int                         `json:"study_count"`
	LastExamScore     *float64                    `json:"last_exam_score,omitempty"`
	LastExamTime      *int64                      `json:"last_exam_time,omitempty"`
}

// NewBankProgress returns an empty progress ledger.
func NewBankProgress() *BankProgress {
	return &BankProgress{AnsweredQuestions: make(map[string]AnsweredQuestion)}
}
