package model

// QuestionBank is a named collection of questions, the unit of
// import/export and the source pool for every session.
type QuestionBank struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Questions  []Question `json:"questions"`
	CreateTime int64      `json:"create_time"`
	UpdateTime int64      `json:"update_time"`
}

// CreateBankRequest is the payload for creating a question bank.
type CreateBankRequest struct {
	Name      string     `json:"name" binding:"required,min=1,max=255"`
	Questions []Question `json:"questions" binding:"required,min=1,dive"`
}

// UpdateBankRequest is the payload for replacing a bank's questions.
type UpdateBankRequest struct {
	Questions []Question `json:"questions" binding:"required,min=1,dive"`
}

// RenameBankRequest is the payload for renaming a bank.
type RenameBankRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// BankStats summarizes a single bank's size and learning progress.
type BankStats struct {
	TotalQuestions int     `json:"total_questions"`
	Completed      int     `json:"completed"`
	Correct        int     `json:"correct"`
	Incorrect      int     `json:"incorrect"`
	Accuracy       float64 `json:"accuracy"`
	LastStudied    *int64  `json:"last_studied,omitempty"`
}

// OverallStats aggregates progress across every bank.
type OverallStats struct {
	TotalBanks     int     `json:"total_banks"`
	TotalQuestions int     `json:"total_questions"`
	TotalCompleted int     `json:"total_completed"`
	TotalAnswered  int     `json:"total_answered"`
	TotalCorrect   int     `json:"total_correct"`
	TotalIncorrect int     `json:"total_incorrect"`
	Accuracy       float64 `json:"accuracy"`
	CompletionRate float64 `json:"completion_rate"`
}
