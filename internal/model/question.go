package model

// QuestionType discriminates how a question is answered and scored.
type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "single"
	QuestionTypeMultiple QuestionType = "multiple"
	QuestionTypeJudge    QuestionType = "judge"
)

// Question is a single bank question. Once loaded into a bank it is
// immutable; sessions work on deep copies so later bank edits cannot
// mutate in-flight session state.
type Question struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Type     QuestionType      `json:"type"`
	Options  map[string]string `json:"options"`
	Answer   string            `json:"answer"`
	Analysis string            `json:"analysis,omitempty"`
	Score    float64           `json:"score,omitempty"`
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = make(map[string]string, len(q.Options))
		for k, v := range q.Options {
			c.Options[k] = v
		}
	}
	return c
}

// CloneQuestions deep-copies a question slice.
func CloneQuestions(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
