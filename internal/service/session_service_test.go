package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiku/quizbank-backend/internal/bank"
	"github.com/studiku/quizbank-backend/internal/model"
	"github.com/studiku/quizbank-backend/internal/persist"
	"github.com/studiku/quizbank-backend/internal/progress"
	"github.com/studiku/quizbank-backend/internal/selector"
	"github.com/studiku/quizbank-backend/internal/session"
	"github.com/studiku/quizbank-backend/internal/store"
)

type fixture struct {
	svc     *SessionService
	banks   *bank.Repository
	tracker *progress.Tracker
	history *persist.History
	store   *store.MemoryStore
	bankID  string
	offset  *time.Duration
}

var testBase = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st := store.NewMemory()
	offset := new(time.Duration)
	clock := func() time.Time { return testBase.Add(*offset) }

	tracker := progress.NewTracker(st, zerolog.Nop())
	banks := bank.NewRepository(st, tracker, zerolog.Nop())
	adapter := persist.NewAdapter(st, zerolog.Nop()).WithClock(clock)
	history := persist.NewHistory(st, 10, zerolog.Nop())
	sel := selector.New(rand.New(rand.NewSource(1)))

	svc := NewSessionService(banks, tracker, adapter, history, sel, zerolog.Nop()).WithClock(clock)

	b, err := banks.Add(ctx, "Fixtures", []model.Question{
		{ID: "q1", Content: "1+1", Type: model.QuestionTypeSingle, Answer: "A", Score: 2},
		{ID: "q2", Content: "2+2", Type: model.QuestionTypeSingle, Answer: "B", Score: 2},
		{ID: "q3", Content: "sky is blue", Type: model.QuestionTypeJudge, Answer: "TRUE", Score: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	return &fixture{
		svc:     svc,
		banks:   banks,
		tracker: tracker,
		history: history,
		store:   st,
		bankID:  b.ID,
		offset:  offset,
	}
}

func examConfig(minutes int) session.ExamConfig {
	return session.ExamConfig{
		Mode:            session.ExamModeLegacy,
		TotalCount:      3,
		SingleScore:     2,
		MultipleScore:   2,
		JudgeScore:      1,
		DurationMinutes: minutes,
	}
}

func TestStartExamDefaultsScores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sess, err := f.svc.StartExam(ctx, f.bankID, "alice", session.ExamConfig{
		Mode:            session.ExamModeLegacy,
		TotalCount:      2,
		DurationMinutes: 30,
	})
	if err != nil {
		t.Fatal(err)
	}

	if sess.Len() != 2 {
		t.Errorf("question count = %d, want 2", sess.Len())
	}
	ec := sess.Config.Exam
	if ec.SingleScore != session.DefaultSingleScore || ec.MultipleScore != session.DefaultMultipleScore || ec.JudgeScore != session.DefaultJudgeScore {
		t.Errorf("scores not defaulted: %+v", ec)
	}
}

func TestStartExamUnknownBank(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.StartExam(context.Background(), "missing", "", examConfig(30))
	if !errors.Is(err, bank.ErrBankNotFound) {
		t.Errorf("err = %v, want ErrBankNotFound", err)
	}
}

func TestExamSubmitRecordsHistoryAndClearsAutosave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sess, err := f.svc.StartExam(ctx, f.bankID, "alice", examConfig(30))
	if err != nil {
		t.Fatal(err)
	}

	// Answer every question correctly.
	for i, q := range sess.Questions {
		if err := f.svc.Answer(ctx, session.KindExam, i, q.Answer); err != nil {
			t.Fatal(err)
		}
	}

	result, err := f.svc.Submit(ctx, session.KindExam)
	if err != nil {
		t.Fatal(err)
	}
	if result.CorrectCount != 3 || result.Score != result.MaxScore {
		t.Errorf("result = %+v, want full marks", result)
	}

	records, err := f.history.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("history has %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.BankID != f.bankID || rec.CandidateName != "alice" || rec.Score != result.Score {
		t.Errorf("record = %+v", rec)
	}

	prog, err := f.tracker.Get(ctx, f.bankID)
	if err != nil {
		t.Fatal(err)
	}
	if prog.LastExamScore == nil || *prog.LastExamScore != result.Score {
		t.Errorf("last exam score not stamped: %+v", prog.LastExamScore)
	}

	// Autosave cleared: a fresh service has nothing to resume.
	other := NewSessionService(f.banks, f.tracker, persist.NewAdapter(f.store, zerolog.Nop()), f.history, selector.New(nil), zerolog.Nop())
	if _, err := other.Resume(ctx, session.KindExam); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("resume after submit: err = %v, want ErrNoActiveSession", err)
	}
}

func TestSubmitIsIdempotentOnSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.StartExam(ctx, f.bankID, "", examConfig(30)); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Submit(ctx, session.KindExam); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Submit(ctx, session.KindExam); err != nil {
		t.Fatal(err)
	}

	records, err := f.history.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("history has %d records after double submit, want 1", len(records))
	}
}

func TestAnswerAfterSubmitIsSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.StartExam(ctx, f.bankID, "", examConfig(30)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Submit(ctx, session.KindExam); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Answer(ctx, session.KindExam, 0, "A"); err != nil {
		t.Errorf("late answer: err = %v, want nil", err)
	}
	if err := f.svc.Mark(ctx, session.KindExam, 0); err != nil {
		t.Errorf("late mark: err = %v, want nil", err)
	}
}

func TestSubmitIfExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.StartExam(ctx, f.bankID, "", examConfig(30)); err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.SubmitIfExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Fatal("submitted before expiry")
	}

	*f.offset = 30 * time.Minute
	res, err = f.svc.SubmitIfExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res == nil {
		t.Fatal("not submitted at expiry")
	}

	// Already submitted: nothing further to do.
	res, err = f.svc.SubmitIfExpired(ctx)
	if err != nil || res != nil {
		t.Errorf("repeat check = (%v, %v), want (nil, nil)", res, err)
	}
}

func TestLearningNavigationSyncsProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sess, err := f.svc.StartLearning(ctx, f.bankID, session.LearningConfig{Order: session.OrderSequential}, ScopeAll)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Len() != 3 {
		t.Fatalf("question count = %d, want 3", sess.Len())
	}

	// Answer the first question wrong and navigate away: learning grades
	// on leave, and the graded answer reaches the tracker.
	q0 := sess.Questions[0]
	wrong := "A"
	if wrong == q0.Answer {
		wrong = "B"
	}
	if err := f.svc.Answer(ctx, session.KindLearning, 0, wrong); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Navigate(ctx, session.KindLearning, 1); err != nil {
		t.Fatal(err)
	}

	prog, err := f.tracker.Get(ctx, f.bankID)
	if err != nil {
		t.Fatal(err)
	}
	if prog.Completed != 1 || prog.Incorrect != 1 {
		t.Errorf("progress = completed %d incorrect %d, want 1/1", prog.Completed, prog.Incorrect)
	}

	// Corrected answer flips the counters on the next sync.
	if err := f.svc.Jump(ctx, session.KindLearning, 0); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Answer(ctx, session.KindLearning, 0, q0.Answer); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Navigate(ctx, session.KindLearning, 1); err != nil {
		t.Fatal(err)
	}

	prog, err = f.tracker.Get(ctx, f.bankID)
	if err != nil {
		t.Fatal(err)
	}
	if prog.Completed != 1 || prog.Correct != 1 || prog.Incorrect != 0 {
		t.Errorf("progress after fix = %+v, want 1 completed, 1 correct", prog)
	}
}

func TestLearningScopeIncorrect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Seed progress: q1 wrong, q2 right.
	if err := f.tracker.Record(ctx, f.bankID, "q1", "B", "A"); err != nil {
		t.Fatal(err)
	}
	if err := f.tracker.Record(ctx, f.bankID, "q2", "B", "B"); err != nil {
		t.Fatal(err)
	}

	sess, err := f.svc.StartLearning(ctx, f.bankID, session.LearningConfig{Order: session.OrderSequential}, ScopeIncorrect)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Len() != 1 || sess.Questions[0].ID != "q1" {
		t.Errorf("incorrect scope selected %d questions, want just q1", sess.Len())
	}

	sess, err = f.svc.StartLearning(ctx, f.bankID, session.LearningConfig{Order: session.OrderSequential}, ScopeUnanswered)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Len() != 1 || sess.Questions[0].ID != "q3" {
		t.Errorf("unanswered scope selected %d questions, want just q3", sess.Len())
	}
}

func TestResumeFromStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sess, err := f.svc.StartExam(ctx, f.bankID, "alice", examConfig(30))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Answer(ctx, session.KindExam, 0, "A"); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Jump(ctx, session.KindExam, 1); err != nil {
		t.Fatal(err)
	}

	// A second service over the same store stands in for a restart.
	clock := func() time.Time { return testBase.Add(*f.offset) }
	other := NewSessionService(
		f.banks, f.tracker,
		persist.NewAdapter(f.store, zerolog.Nop()).WithClock(clock),
		f.history, selector.New(nil), zerolog.Nop(),
	).WithClock(clock)

	restored, err := other.Resume(ctx, session.KindExam)
	if err != nil {
		t.Fatal(err)
	}
	if restored.CurrentIndex != 1 || restored.Answers[0] != "A" {
		t.Errorf("restored index %d answers %v", restored.CurrentIndex, restored.Answers)
	}
	if restored.Config.CandidateName != sess.Config.CandidateName {
		t.Errorf("candidate = %q, want %q", restored.Config.CandidateName, sess.Config.CandidateName)
	}
}

func TestExitClearsAutosave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.StartLearning(ctx, f.bankID, session.LearningConfig{Order: session.OrderSequential}, ScopeAll); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Exit(ctx, session.KindLearning); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Resume(ctx, session.KindLearning); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("resume after exit: err = %v, want ErrNoActiveSession", err)
	}
}
