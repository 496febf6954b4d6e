package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/studiku/quizbank-backend/internal/bank"
	"github.com/studiku/quizbank-backend/internal/model"
	"github.com/studiku/quizbank-backend/internal/persist"
	"github.com/studiku/quizbank-backend/internal/progress"
	"github.com/studiku/quizbank-backend/internal/scoring"
	"github.com/studiku/quizbank-backend/internal/selector"
	"github.com/studiku/quizbank-backend/internal/session"
)

// ErrNoActiveSession means no session of the requested kind is running
// and none could be resumed from the store.
var ErrNoActiveSession = errors.New("no active session")

// ErrNoQuestions means the bank has no questions matching the request.
var ErrNoQuestions = errors.New("no questions available")

// LearningScope narrows the learning pool before selection.
type LearningScope string

const (
	ScopeAll        LearningScope = "all"
	ScopeUnanswered LearningScope = "unanswered"
	ScopeIncorrect  LearningScope = "incorrect"
)

// SessionService orchestrates the session core: it selects questions,
// drives the state machine, autosaves after every mutation, and fans
// out submission side effects (history, progress). At most one session
// per kind is active, matching the single-user deployment model.
type SessionService struct {
	banks   *bank.Repository
	tracker *progress.Tracker
	adapter *persist.Adapter
	history *persist.History
	sel     *selector.Selector
	log     zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	active map[session.Kind]*session.Session
	// synced remembers, per kind and question index, the last answer
	// already written to the progress tracker, so learning sync never
	// double-counts an unchanged answer.
	synced map[session.Kind]map[int]string
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	banks *bank.Repository,
	tracker *progress.Tracker,
	adapter *persist.Adapter,
	history *persist.History,
	sel *selector.Selector,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		banks:   banks,
		tracker: tracker,
		adapter: adapter,
		history: history,
		sel:     sel,
		log:     log.With().Str("component", "session_service").Logger(),
		now:     time.Now,
		active:  make(map[session.Kind]*session.Session),
		synced:  make(map[session.Kind]map[int]string),
	}
}

// WithClock injects the time source, for tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// StartExam builds an exam session from the bank's pool. A zero score
// field falls back to the per-type default so legacy clients can omit
// scores entirely. Any previous exam session of the same kind is
// replaced, in memory and in the store.
func (s *SessionService) StartExam(ctx context.Context, bankID, candidateName string, ec session.ExamConfig) (*session.Session, error) {
	b, err := s.banks.Get(ctx, bankID)
	if err != nil {
		return nil, err
	}

	if ec.SingleScore == 0 {
		ec.SingleScore = session.DefaultSingleScore
	}
	if ec.MultipleScore == 0 {
		ec.MultipleScore = session.DefaultMultipleScore
	}
	if ec.JudgeScore == 0 {
		ec.JudgeScore = session.DefaultJudgeScore
	}

	var questions []model.Question
	switch ec.Mode {
	case session.ExamModeTyped:
		questions = s.sel.ByQuota(b.Questions, ec.SingleCount, ec.MultipleCount, ec.JudgeCount)
	default:
		questions = s.sel.Random(b.Questions)
		if ec.TotalCount > 0 && ec.TotalCount < len(questions) {
			questions = questions[:ec.TotalCount]
		}
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	cfg := session.Config{
		Kind:          session.KindExam,
		BankID:        b.ID,
		BankName:      b.Name,
		CandidateName: candidateName,
		Exam:          &ec,
	}
	sess, err := session.Start(cfg, questions, session.WithClock(s.now))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.active[session.KindExam] = sess
	s.synced[session.KindExam] = make(map[int]string)
	s.mu.Unlock()

	s.autosave(ctx, sess)
	s.log.Info().Str("bank_id", b.ID).Int("questions", len(questions)).Msg("exam session started")
	return sess, nil
}

// StartLearning builds a learning session, optionally narrowed to
// questions the user has not yet answered or got wrong.
func (s *SessionService) StartLearning(ctx context.Context, bankID string, lc session.LearningConfig, scope LearningScope) (*session.Session, error) {
	b, err := s.banks.Get(ctx, bankID)
	if err != nil {
		return nil, err
	}

	pool := b.Questions
	switch scope {
	case ScopeUnanswered:
		ids, err := s.tracker.Unanswered(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("unanswered questions: %w", err)
		}
		pool = filterByID(pool, ids)
	case ScopeIncorrect:
		ids, err := s.tracker.Incorrect(ctx, bankID)
		if err != nil {
			return nil, fmt.Errorf("incorrect questions: %w", err)
		}
		pool = filterByID(pool, ids)
	}

	var questions []model.Question
	if lc.Order == session.OrderRandom {
		questions = s.sel.Random(pool)
	} else {
		questions = s.sel.Sequential(pool)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	cfg := session.Config{
		Kind:     session.KindLearning,
		BankID:   b.ID,
		BankName: b.Name,
		Learning: &lc,
	}
	sess, err := session.Start(cfg, questions, session.WithClock(s.now))
	if err != nil {
		return nil, err
	}
	if lc.ReviewMode {
		for i := range questions {
			sess.Viewed[i] = struct{}{}
		}
	}

	s.mu.Lock()
	s.active[session.KindLearning] = sess
	s.synced[session.KindLearning] = make(map[int]string)
	s.mu.Unlock()

	s.autosave(ctx, sess)
	s.log.Info().Str("bank_id", b.ID).Str("scope", string(scope)).Int("questions", len(questions)).Msg("learning session started")
	return sess, nil
}

// Resume returns the active session of the given kind, loading it from
// the store when none is in memory. ErrNoActiveSession when neither
// exists.
func (s *SessionService) Resume(ctx context.Context, kind session.Kind) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.active[kind]; ok {
		return sess, nil
	}

	sess, err := s.adapter.Load(ctx, kind, session.WithClock(s.now))
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrNoActiveSession
	}

	s.active[kind] = sess
	s.synced[kind] = make(map[int]string)
	s.log.Info().Str("kind", string(kind)).Str("bank_id", sess.Config.BankID).Msg("session resumed")
	return sess, nil
}

// Answer records the raw answer for the question at index. A late
// answer against a submitted session is logged and swallowed: stray UI
// events after submission are expected, not failures.
func (s *SessionService) Answer(ctx context.Context, kind session.Kind, index int, rawAnswer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[kind]
	if !ok {
		return ErrNoActiveSession
	}

	if err := sess.RecordAnswer(index, rawAnswer); err != nil {
		if errors.Is(err, session.ErrAlreadySubmitted) {
			s.log.Warn().Str("kind", string(kind)).Int("index", index).Msg("answer after submission ignored")
			return nil
		}
		return err
	}

	s.syncLearning(ctx, kind, sess)
	s.autosave(ctx, sess)
	return nil
}

// Navigate moves the cursor by direction (+1 or -1).
func (s *SessionService) Navigate(ctx context.Context, kind session.Kind, direction int) error {
	return s.move(ctx, kind, func(sess *session.Session) error {
		return sess.Advance(direction)
	})
}

// Jump moves the cursor to an absolute index.
func (s *SessionService) Jump(ctx context.Context, kind session.Kind, index int) error {
	return s.move(ctx, kind, func(sess *session.Session) error {
		return sess.JumpTo(index)
	})
}

func (s *SessionService) move(ctx context.Context, kind session.Kind, op func(*session.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[kind]
	if !ok {
		return ErrNoActiveSession
	}
	if err := op(sess); err != nil {
		return err
	}

	s.syncLearning(ctx, kind, sess)
	s.autosave(ctx, sess)
	return nil
}

// Mark toggles the bookmark on index. Like Answer, a toggle against a
// submitted session is swallowed with a warning.
func (s *SessionService) Mark(ctx context.Context, kind session.Kind, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[kind]
	if !ok {
		return ErrNoActiveSession
	}

	if err := sess.ToggleMark(index); err != nil {
		if errors.Is(err, session.ErrAlreadySubmitted) {
			s.log.Warn().Str("kind", string(kind)).Int("index", index).Msg("mark after submission ignored")
			return nil
		}
		return err
	}

	s.autosave(ctx, sess)
	return nil
}

// Reveal toggles answer visibility on index (learning only).
func (s *SessionService) Reveal(ctx context.Context, kind session.Kind, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[kind]
	if !ok {
		return ErrNoActiveSession
	}

	if err := sess.ToggleViewAnswer(index); err != nil {
		if errors.Is(err, session.ErrAlreadySubmitted) {
			s.log.Warn().Str("kind", string(kind)).Int("index", index).Msg("reveal after submission ignored")
			return nil
		}
		return err
	}

	s.syncLearning(ctx, kind, sess)
	s.autosave(ctx, sess)
	return nil
}

// Submit finalizes the session and returns the scored result. The
// first submission runs side effects: exams append a history record
// and stamp the bank's last exam score; learning flushes the final
// progress sync. Either way the stored autosave is cleared. Repeat
// submissions just re-score, so a timer-driven submit racing a
// user-driven one is harmless.
func (s *SessionService) Submit(ctx context.Context, kind session.Kind) (*scoring.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[kind]
	if !ok {
		return nil, ErrNoActiveSession
	}

	first := !sess.Submitted
	sess.Submit()

	result, err := scoring.Score(sess)
	if err != nil {
		return nil, err
	}
	if !first {
		return result, nil
	}

	switch kind {
	case session.KindExam:
		s.recordExam(ctx, sess, result)
	case session.KindLearning:
		s.syncLearning(ctx, kind, sess)
	}

	if err := s.adapter.Clear(ctx, kind); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("failed to clear saved session")
	}

	s.log.Info().
		Str("kind", string(kind)).
		Float64("score", result.Score).
		Int("correct", result.CorrectCount).
		Int("wrong", result.WrongCount).
		Int("skipped", result.SkippedCount).
		Msg("session submitted")
	return result, nil
}

// Result re-scores the active session. ErrNotSubmitted until Submit.
func (s *SessionService) Result(kind session.Kind) (*scoring.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[kind]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return scoring.Score(sess)
}

// Current returns the active in-memory session of the given kind, or
// nil. It does not touch the store; use Resume for that.
func (s *SessionService) Current(kind session.Kind) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[kind]
}

// Exit abandons the session: it is dropped from memory and its
// autosave removed, so it cannot be resumed.
func (s *SessionService) Exit(ctx context.Context, kind session.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.active, kind)
	delete(s.synced, kind)
	return s.adapter.Clear(ctx, kind)
}

// SubmitIfExpired force-submits the exam session once its time budget
// runs out. Returns (nil, nil) when there is nothing to do: no exam
// running, time remaining, or already submitted. The countdown stream
// calls this every tick.
func (s *SessionService) SubmitIfExpired(ctx context.Context) (*scoring.Result, error) {
	s.mu.Lock()
	sess, ok := s.active[session.KindExam]
	expired := ok && !sess.Submitted && sess.IsExpired()
	s.mu.Unlock()

	if !expired {
		return nil, nil
	}

	s.log.Info().Str("bank_id", sess.Config.BankID).Msg("exam time expired, forcing submission")
	return s.Submit(ctx, session.KindExam)
}

// Countdown reports one beat of the exam countdown: time remaining,
// answer progress, and whether the session was submitted. ok is false
// when no exam session is in memory.
func (s *SessionService) Countdown() (remaining time.Duration, answered, total int, submitted, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, present := s.active[session.KindExam]
	if !present {
		return 0, 0, 0, false, false
	}
	remaining, _ = session.Remaining(sess)
	return remaining, sess.AnsweredCount(), sess.Len(), sess.Submitted, true
}

// recordExam appends the history record and stamps the bank's progress
// with the exam score. Failures are logged, not propagated: the user's
// result must never be lost to a bookkeeping write.
func (s *SessionService) recordExam(ctx context.Context, sess *session.Session, result *scoring.Result) {
	completed := s.now()
	if sess.CompletedAt != nil {
		completed = *sess.CompletedAt
	}

	rec := model.ExamRecord{
		BankID:          sess.Config.BankID,
		BankName:        sess.Config.BankName,
		CandidateName:   sess.Config.CandidateName,
		Score:           result.Score,
		MaxScore:        result.MaxScore,
		CorrectCount:    result.CorrectCount,
		WrongCount:      result.WrongCount,
		SkippedCount:    result.SkippedCount,
		TotalQuestions:  result.TotalQuestions,
		DurationMinutes: int(sess.Duration / time.Minute),
		StartTime:       sess.StartTime.UnixMilli(),
		CompletedTime:   completed.UnixMilli(),
	}
	if _, err := s.history.Append(ctx, rec); err != nil {
		s.log.Error().Err(err).Msg("failed to append exam record")
	}
	if err := s.tracker.SetExamScore(ctx, sess.Config.BankID, result.Score); err != nil {
		s.log.Error().Err(err).Msg("failed to stamp exam score")
	}
}

// syncLearning pushes newly graded learning answers into the progress
// tracker. Each (index, answer) pair is written once; a re-grade after
// the user changes their answer is written again. Exams never sync:
// their results only exist after submission and land via recordExam.
func (s *SessionService) syncLearning(ctx context.Context, kind session.Kind, sess *session.Session) {
	if kind != session.KindLearning {
		return
	}

	seen := s.synced[kind]
	for i, entry := range sess.Results {
		if entry == nil || !entry.Answered {
			continue
		}
		if prev, ok := seen[i]; ok && prev == entry.UserAnswer {
			continue
		}
		q := sess.Questions[i]
		if err := s.tracker.Record(ctx, sess.Config.BankID, q.ID, entry.UserAnswer, entry.CorrectAnswer); err != nil {
			s.log.Error().Err(err).Str("question_id", q.ID).Msg("failed to record progress")
			continue
		}
		seen[i] = entry.UserAnswer
	}
}

// autosave persists the session after a mutation. A failed save is
// logged and swallowed: losing resumability is recoverable, aborting
// the user's action is not.
func (s *SessionService) autosave(ctx context.Context, sess *session.Session) {
	if err := s.adapter.Save(ctx, sess); err != nil {
		s.log.Warn().Err(err).Str("kind", string(sess.Kind())).Msg("session autosave failed")
	}
}

func filterByID(pool []model.Question, ids []string) []model.Question {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]model.Question, 0, len(ids))
	for _, q := range pool {
		if _, ok := want[q.ID]; ok {
			out = append(out, q)
		}
	}
	return out
}
