package app

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"finlit-quiz-service/internal/domain"
)

// QuestionSource provides the validated question bank (file, Postgres, cached).
type QuestionSource interface {
	Questions(ctx context.Context) ([]domain.Question, error)
}

// ScoreLog is the append-only leaderboard recorder. Append failures are
// recoverable: the session's own score stays authoritative.
type ScoreLog interface {
	Append(ctx context.Context, record domain.ScoreRecord) error
	LoadAll(ctx context.Context) ([]domain.ScoreRecord, error)
}

const (
	DefaultAnswerWindow = 10 * time.Second
	DefaultRevealWindow = 5 * time.Second
	DefaultStoreTimeout = 3 * time.Second
)

// Engine drives quiz sessions through their timed phases.
type Engine struct {
	source       QuestionSource
	scores       ScoreLog
	answerWindow time.Duration
	revealWindow time.Duration
	storeTimeout time.Duration
	now          func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewEngine(source QuestionSource, scores ScoreLog, answerWindow, revealWindow time.Duration) *Engine {
	return NewEngineWithClock(source, scores, answerWindow, revealWindow, time.Now)
}

// NewEngineWithClock allows deterministic time in tests.
func NewEngineWithClock(source QuestionSource, scores ScoreLog, answerWindow, revealWindow time.Duration, now func() time.Time) *Engine {
	if answerWindow <= 0 {
		answerWindow = DefaultAnswerWindow
	}
	if revealWindow <= 0 {
		revealWindow = DefaultRevealWindow
	}
	return &Engine{
		source:       source,
		scores:       scores,
		answerWindow: answerWindow,
		revealWindow: revealWindow,
		storeTimeout: DefaultStoreTimeout,
		now:          now,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetStoreTimeout bounds leaderboard persistence I/O per call.
func (e *Engine) SetStoreTimeout(d time.Duration) {
	if d > 0 {
		e.storeTimeout = d
	}
}

// Session is a single participant's quiz run. It is owned by the engine and
// mutated only through engine calls.
type Session struct {
	mu sync.Mutex

	username string
	country  string
	avatar   string
	category string

	questions []domain.Question
	index     int
	score     int
	phase     domain.Phase
	phaseAt   time.Time

	selected    string
	hasSelected bool
	scored      []bool

	clamped     bool
	recorded    bool
	persistWarn bool
}

// Start validates the participant setup, samples the question set and moves
// the session into the answering phase.
func (e *Engine) Start(ctx context.Context, setup domain.Setup) (*Session, error) {
	name := strings.TrimSpace(setup.Name)
	avatar := strings.TrimSpace(setup.Avatar)
	if name == "" || avatar == "" {
		return nil, domain.ErrSetupIncomplete
	}
	requested, ok := domain.QuestionCount(setup.Difficulty)
	if !ok {
		return nil, domain.ErrUnknownDifficulty
	}

	bankQuestions, err := e.source.Questions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	if len(bankQuestions) == 0 {
		return nil, domain.ErrNoValidQuestions
	}

	count := requested
	clamped := false
	if count > len(bankQuestions) {
		count = len(bankQuestions)
		clamped = true
	}

	session := &Session{
		username:  name,
		country:   strings.TrimSpace(setup.Country),
		avatar:    avatar,
		category:  setup.Difficulty,
		questions: e.sample(bankQuestions, count),
		phase:     domain.PhaseAnswering,
		phaseAt:   e.now(),
		scored:    make([]bool, count),
		clamped:   clamped,
	}
	return session, nil
}

// sample draws count distinct questions from the bank.
func (e *Engine) sample(bank []domain.Question, count int) []domain.Question {
	e.rndMu.Lock()
	perm := e.rnd.Perm(len(bank))
	e.rndMu.Unlock()

	picked := make([]domain.Question, 0, count)
	for _, i := range perm[:count] {
		picked = append(picked, bank[i])
	}
	return picked
}

// Select records the participant's option. Only the first selection within
// the answering window is accepted; it short-circuits straight into reveal.
func (e *Engine) Select(session *Session, option string) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.phase != domain.PhaseAnswering {
		return domain.ErrSelectionClosed
	}
	question := session.questions[session.index]
	valid := false
	for _, o := range question.Options {
		if o == option {
			valid = true
			break
		}
	}
	if !valid {
		return domain.ErrOptionUnknown
	}

	session.selected = option
	session.hasSelected = true
	session.enterRevealLocked(e.now())
	return nil
}

// Tick re-evaluates elapsed time against the current phase window and drives
// all time-based transitions. Hosts call it on every poll cycle; a tick past
// the final reveal also emits the score record exactly once.
func (e *Engine) Tick(ctx context.Context, session *Session) {
	session.mu.Lock()

	now := e.now()
	switch session.phase {
	case domain.PhaseAnswering:
		if now.Sub(session.phaseAt) >= e.answerWindow {
			session.enterRevealLocked(now)
		}
	case domain.PhaseRevealing:
		if now.Sub(session.phaseAt) >= e.revealWindow {
			session.advanceLocked(now)
		}
	}

	emit := session.phase == domain.PhaseComplete && !session.recorded
	if emit {
		session.recorded = true
	}
	record := session.recordLocked()
	session.mu.Unlock()

	if !emit {
		return
	}
	appendCtx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	if err := e.scores.Append(appendCtx, record); err != nil {
		session.mu.Lock()
		session.persistWarn = true
		session.mu.Unlock()
	}
}

// enterRevealLocked transitions into the reveal window and applies the
// per-question scoring event. Scoring is idempotent: the scored flag is
// checked and set within the same locked section.
func (s *Session) enterRevealLocked(now time.Time) {
	s.phase = domain.PhaseRevealing
	s.phaseAt = now
	if s.scored[s.index] {
		return
	}
	s.scored[s.index] = true
	if s.hasSelected && s.selected == s.questions[s.index].Answer {
		s.score++
	}
}

// advanceLocked is the instantaneous ADVANCING transition.
func (s *Session) advanceLocked(now time.Time) {
	if s.index+1 < len(s.questions) {
		s.index++
		s.selected = ""
		s.hasSelected = false
		s.phase = domain.PhaseAnswering
		s.phaseAt = now
		return
	}
	s.phase = domain.PhaseComplete
	s.phaseAt = now
}

func (s *Session) recordLocked() domain.ScoreRecord {
	return domain.ScoreRecord{
		Username: s.username,
		Country:  s.country,
		Avatar:   s.avatar,
		Category: s.category,
		Score:    s.score,
		Total:    len(s.questions),
	}
}

// Restart resets every session field and hands control back to setup.
func (e *Engine) Restart(session *Session) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.username = ""
	session.country = ""
	session.avatar = ""
	session.category = ""
	session.questions = nil
	session.index = 0
	session.score = 0
	session.phase = domain.PhaseSetup
	session.phaseAt = time.Time{}
	session.selected = ""
	session.hasSelected = false
	session.scored = nil
	session.clamped = false
	session.recorded = false
	session.persistWarn = false
}

// Results builds the completion summary: the emitted record, the session's
// leaderboard placement and the top standings for its category. A failing
// store degrades to rank-unavailable; it never masks the local score.
func (e *Engine) Results(ctx context.Context, session *Session) (domain.Results, error) {
	session.mu.Lock()
	if session.phase != domain.PhaseComplete {
		session.mu.Unlock()
		return domain.Results{}, fmt.Errorf("quiz still in phase %s", session.phase)
	}
	record := session.recordLocked()
	warn := session.persistWarn
	session.mu.Unlock()

	results := domain.Results{Record: record, PersistenceWarning: warn}

	loadCtx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	all, err := e.scores.LoadAll(loadCtx)
	if err != nil {
		results.RankUnavailable = true
		return results, nil
	}

	standings := FilterCategory(all, record.Category)
	SortStandings(standings)
	results.Rank = Rank(standings, record)
	results.RankUnavailable = results.Rank == 0
	if len(standings) > 10 {
		standings = standings[:10]
	}
	results.Standings = standings
	return results, nil
}

// View renders a transport-friendly snapshot of the session.
func (e *Engine) View(session *Session) domain.SessionView {
	session.mu.Lock()
	defer session.mu.Unlock()

	now := e.now()
	view := domain.SessionView{
		Phase:         session.phase.String(),
		Username:      session.username,
		Country:       session.country,
		Avatar:        session.avatar,
		Category:      session.category,
		QuestionIndex: session.index,
		QuestionCount: len(session.questions),
		Score:         session.score,
		Clamped:       session.clamped,
		UpdatedAt:     now,
	}

	switch session.phase {
	case domain.PhaseAnswering:
		q := session.questions[session.index]
		view.Prompt = q.Prompt
		view.Options = q.Options
		view.Remaining = remainingSeconds(e.answerWindow, now.Sub(session.phaseAt))
	case domain.PhaseRevealing:
		q := session.questions[session.index]
		view.Prompt = q.Prompt
		view.Reveal = make([]domain.OptionMark, 0, len(q.Options))
		for _, o := range q.Options {
			view.Reveal = append(view.Reveal, domain.OptionMark{
				Text:     o,
				Correct:  o == q.Answer,
				Selected: session.hasSelected && o == session.selected,
			})
		}
		view.Remaining = remainingSeconds(e.revealWindow, now.Sub(session.phaseAt))
	}
	return view
}

func remainingSeconds(window, elapsed time.Duration) float64 {
	left := window - elapsed
	if left < 0 {
		left = 0
	}
	return left.Seconds()
}
