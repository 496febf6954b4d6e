package scoring

import (
	"errors"
	"testing"

	"github.com/studiku/quizbank-backend/internal/model"
	"github.com/studiku/quizbank-backend/internal/session"
)

func startExam(t *testing.T) *session.Session {
	t.Helper()
	cfg := session.Config{
		Kind:   session.KindExam,
		BankID: "bank-1",
		Exam: &session.ExamConfig{
			Mode:            session.ExamModeTyped,
			SingleCount:     2,
			JudgeCount:      1,
			SingleScore:     2,
			MultipleScore:   2,
			JudgeScore:      1,
			DurationMinutes: 30,
		},
	}
	questions := []model.Question{
		{ID: "q1", Type: model.QuestionTypeSingle, Answer: "A"},
		{ID: "q2", Type: model.QuestionTypeSingle, Answer: "B"},
		{ID: "q3", Type: model.QuestionTypeJudge, Answer: "TRUE"},
	}
	s, err := session.Start(cfg, questions)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestScoreRequiresSubmission(t *testing.T) {
	s := startExam(t)
	if _, err := Score(s); !errors.Is(err, ErrNotSubmitted) {
		t.Fatalf("err = %v, want ErrNotSubmitted", err)
	}
}

// Two single questions at 2 points, one judge at 1 point. Q1 right,
// Q2 wrong, Q3 skipped: 2/5 points, 40% score, 33% accuracy.
func TestExamScoringScenario(t *testing.T) {
	s := startExam(t)

	if err := s.RecordAnswer(0, "A"); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAnswer(1, "A"); err != nil {
		t.Fatal(err)
	}
	s.Submit()

	r, err := Score(s)
	if err != nil {
		t.Fatal(err)
	}

	if r.CorrectCount != 1 || r.WrongCount != 1 || r.SkippedCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", r.CorrectCount, r.WrongCount, r.SkippedCount)
	}
	if r.Score != 2 {
		t.Errorf("score = %v, want 2", r.Score)
	}
	if r.MaxScore != 5 {
		t.Errorf("max score = %v, want 5", r.MaxScore)
	}
	if r.ScorePercent != 40 {
		t.Errorf("score percent = %d, want 40", r.ScorePercent)
	}
	if r.AccuracyPercent != 33 {
		t.Errorf("accuracy percent = %d, want 33", r.AccuracyPercent)
	}
	if len(r.WrongQuestions) != 2 {
		t.Errorf("wrong questions = %d, want 2 (one wrong, one skipped)", len(r.WrongQuestions))
	}
}

func TestFractionalScoresRoundHalfUp(t *testing.T) {
	cfg := session.Config{
		Kind:   session.KindExam,
		BankID: "bank-1",
		Exam: &session.ExamConfig{
			Mode:            session.ExamModeTyped,
			SingleCount:     3,
			SingleScore:     0.333,
			MultipleScore:   1,
			JudgeScore:      1,
			DurationMinutes: 10,
		},
	}
	questions := []model.Question{
		{ID: "q1", Type: model.QuestionTypeSingle, Answer: "A"},
		{ID: "q2", Type: model.QuestionTypeSingle, Answer: "A"},
		{ID: "q3", Type: model.QuestionTypeSingle, Answer: "A"},
	}
	s, err := session.Start(cfg, questions)
	if err != nil {
		t.Fatal(err)
	}
	for i := range questions {
		if err := s.RecordAnswer(i, "A"); err != nil {
			t.Fatal(err)
		}
	}
	s.Submit()

	r, err := Score(s)
	if err != nil {
		t.Fatal(err)
	}
	// 3 × 0.333 = 0.999 → 1.0 at two decimals, half-up.
	if r.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", r.Score)
	}
	if r.ScorePercent != 100 {
		t.Errorf("score percent = %d, want 100", r.ScorePercent)
	}
}

func TestLearningScoresPureAccuracy(t *testing.T) {
	cfg := session.Config{
		Kind:     session.KindLearning,
		BankID:   "bank-1",
		Learning: &session.LearningConfig{Order: session.OrderSequential},
	}
	questions := []model.Question{
		{ID: "q1", Type: model.QuestionTypeSingle, Answer: "A"},
		{ID: "q2", Type: model.QuestionTypeMultiple, Answer: "A,B"},
	}
	s, err := session.Start(cfg, questions)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAnswer(0, "A"); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAnswer(1, "B,A"); err != nil {
		t.Fatal(err)
	}
	s.Submit()

	r, err := Score(s)
	if err != nil {
		t.Fatal(err)
	}
	if r.MaxScore != 2 {
		t.Errorf("max score = %v, want 2 (1 per question)", r.MaxScore)
	}
	if r.Score != 2 || r.CorrectCount != 2 {
		t.Errorf("score = %v correct = %d, want 2 and 2", r.Score, r.CorrectCount)
	}
	if r.AccuracyPercent != 100 {
		t.Errorf("accuracy = %d, want 100", r.AccuracyPercent)
	}
}
