package persist

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiku/quizbank-backend/internal/config"
	"github.com/studiku/quizbank-backend/internal/model"
	"github.com/studiku/quizbank-backend/internal/session"
	"github.com/studiku/quizbank-backend/internal/store"
)

func testQuestions() []model.Question {
	return []model.Question{
		{ID: "q1", Type: model.QuestionTypeSingle, Answer: "A", Options: map[string]string{"A": "a", "B": "b"}},
		{ID: "q2", Type: model.QuestionTypeJudge, Answer: "TRUE"},
	}
}

func startExam(t *testing.T, durationMinutes int, opts ...session.Option) *session.Session {
	t.Helper()
	cfg := session.Config{
		Kind:     session.KindExam,
		BankID:   "bank-1",
		BankName: "Bank One",
		Exam: &session.ExamConfig{
			Mode:            session.ExamModeTyped,
			SingleCount:     1,
			JudgeCount:      1,
			SingleScore:     2,
			MultipleScore:   2,
			JudgeScore:      1,
			DurationMinutes: durationMinutes,
		},
	}
	s, err := session.Start(cfg, testQuestions(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	adapter := NewAdapter(st, zerolog.Nop())

	s := startExam(t, 30)
	if err := s.RecordAnswer(0, "A"); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleMark(1); err != nil {
		t.Fatal(err)
	}
	if err := s.JumpTo(1); err != nil {
		t.Fatal(err)
	}
	if err := adapter.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	loaded, err := adapter.Load(ctx, session.KindExam)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil for a live session")
	}

	if loaded.CurrentIndex != 1 {
		t.Errorf("current index = %d, want 1", loaded.CurrentIndex)
	}
	if loaded.Answers[0] != "A" {
		t.Errorf("answers[0] = %q, want A", loaded.Answers[0])
	}
	if got := loaded.MarkedList(); len(got) != 1 || got[0] != 1 {
		t.Errorf("marked = %v, want [1]", got)
	}
	if loaded.Len() != 2 {
		t.Errorf("questions = %d, want 2", loaded.Len())
	}
	if loaded.Config.BankID != "bank-1" {
		t.Errorf("bank id = %q, want bank-1", loaded.Config.BankID)
	}

	// The restored session must be operable.
	if err := loaded.RecordAnswer(1, "TRUE"); err != nil {
		t.Errorf("restored session rejected an answer: %v", err)
	}
}

func TestLoadAbsentReturnsNil(t *testing.T) {
	adapter := NewAdapter(store.NewMemory(), zerolog.Nop())

	s, err := adapter.Load(context.Background(), session.KindExam)
	if err != nil {
		t.Fatalf("absent key must not error: %v", err)
	}
	if s != nil {
		t.Fatal("absent key returned a session")
	}
}

func TestLoadMalformedClearsKey(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	adapter := NewAdapter(st, zerolog.Nop())

	key := config.StoreKey.SessionKey(string(session.KindExam))
	if err := st.Set(ctx, key, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	s, err := adapter.Load(ctx, session.KindExam)
	if err != nil || s != nil {
		t.Fatalf("malformed record: got (%v, %v), want (nil, nil)", s, err)
	}

	if _, err := st.Get(ctx, key); err != store.ErrNotFound {
		t.Error("malformed record was not cleared")
	}
}

func TestLoadSubmittedClearsKey(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	adapter := NewAdapter(st, zerolog.Nop())

	s := startExam(t, 30)
	s.Submit()
	if err := adapter.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	loaded, err := adapter.Load(ctx, session.KindExam)
	if err != nil || loaded != nil {
		t.Fatalf("submitted record: got (%v, %v), want (nil, nil)", loaded, err)
	}

	key := config.StoreKey.SessionKey(string(session.KindExam))
	if _, err := st.Get(ctx, key); err != store.ErrNotFound {
		t.Error("submitted record was not cleared")
	}
}

func TestLoadExpiredClearsKey(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	adapter := NewAdapter(st, zerolog.Nop())

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	offset := time.Duration(0)
	clock := func() time.Time { return base.Add(offset) }

	s := startExam(t, 30, session.WithClock(clock))
	if err := adapter.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	// Past the deadline the stored exam is stale.
	offset = time.Hour
	loaded, err := adapter.Load(ctx, session.KindExam, session.WithClock(clock))
	if err != nil || loaded != nil {
		t.Fatalf("expired record: got (%v, %v), want (nil, nil)", loaded, err)
	}

	key := config.StoreKey.SessionKey(string(session.KindExam))
	if _, err := st.Get(ctx, key); err != store.ErrNotFound {
		t.Error("expired record was not cleared")
	}
}

func TestLoadExpiryUsesAdapterClock(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	offset := time.Duration(0)
	clock := func() time.Time { return base.Add(offset) }
	adapter := NewAdapter(st, zerolog.Nop()).WithClock(clock)

	s := startExam(t, 30, session.WithClock(clock))
	if err := adapter.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	// While fresh the record loads; no load-time option is given, so
	// the adapter's own clock must drive the check.
	loaded, err := adapter.Load(ctx, session.KindExam)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil {
		t.Fatal("fresh record did not load")
	}

	offset = time.Hour
	loaded, err = adapter.Load(ctx, session.KindExam)
	if err != nil || loaded != nil {
		t.Fatalf("expired record: got (%v, %v), want (nil, nil)", loaded, err)
	}

	key := config.StoreKey.SessionKey(string(session.KindExam))
	if _, err := st.Get(ctx, key); err != store.ErrNotFound {
		t.Error("expired record was not cleared")
	}
}

func TestKindsAreIsolated(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	adapter := NewAdapter(st, zerolog.Nop())

	exam := startExam(t, 30)
	if err := adapter.Save(ctx, exam); err != nil {
		t.Fatal(err)
	}

	learning, err := adapter.Load(ctx, session.KindLearning)
	if err != nil {
		t.Fatal(err)
	}
	if learning != nil {
		t.Error("learning load returned the exam session")
	}

	if err := adapter.Clear(ctx, session.KindLearning); err != nil {
		t.Fatal(err)
	}
	if got, err := adapter.Load(ctx, session.KindExam); err != nil || got == nil {
		t.Error("clearing learning removed the exam session")
	}
}
