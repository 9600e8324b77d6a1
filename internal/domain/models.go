package domain

import "time"

// Phase is the lifecycle state of a quiz session.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseAnswering
	PhaseRevealing
	PhaseAdvancing
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseAnswering:
		return "answering"
	case PhaseRevealing:
		return "revealing"
	case PhaseAdvancing:
		return "advancing"
	case PhaseComplete:
		return "complete"
	}
	return "unknown"
}

// Question is a validated multiple-choice question. Immutable once loaded.
type Question struct {
	Prompt  string            `json:"question"`
	Options []string          `json:"options"`
	Answer  string            `json:"answer"`
	Meta    map[string]string `json:"meta,omitempty"` // passthrough fields from the source record
}

// ScoreRecord is the immutable, persisted summary of one completed session.
// Field names match the leaderboard's persisted format.
type ScoreRecord struct {
	Username string `json:"username"`
	Country  string `json:"country"`
	Avatar   string `json:"avatar"`
	Category string `json:"category"`
	Score    int    `json:"score"`
	Total    int    `json:"total"`
}

// Accuracy returns the score ratio, guarding against a zero total.
func (r ScoreRecord) Accuracy() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total)
}

// SameAttempt reports whether two records describe the same completed attempt.
func (r ScoreRecord) SameAttempt(o ScoreRecord) bool {
	return r.Username == o.Username &&
		r.Country == o.Country &&
		r.Score == o.Score &&
		r.Total == o.Total &&
		r.Category == o.Category
}

// Setup carries the participant identity collected before a quiz starts.
type Setup struct {
	Name       string
	Country    string
	Avatar     string
	Difficulty string
}

// Difficulties maps category labels to the number of questions in a session.
var Difficulties = []struct {
	Label string
	Count int
}{
	{"Easy Peasy (5)", 5},
	{"Warm-up (10)", 10},
	{"Steady Climb (20)", 20},
	{"Marathon (30)", 30},
	{"Pro League (40)", 40},
	{"Hardcore Expert (50)", 50},
}

// QuestionCount resolves a difficulty label to its question count.
func QuestionCount(label string) (int, bool) {
	for _, d := range Difficulties {
		if d.Label == label {
			return d.Count, true
		}
	}
	return 0, false
}

// OptionMark describes one option during the reveal phase.
type OptionMark struct {
	Text     string `json:"text"`
	Correct  bool   `json:"correct"`
	Selected bool   `json:"selected"`
}

// SessionView is a snapshot-friendly view of a session for transports.
type SessionView struct {
	Phase         string       `json:"phase"`
	Username      string       `json:"username"`
	Country       string       `json:"country"`
	Avatar        string       `json:"avatar"`
	Category      string       `json:"category"`
	QuestionIndex int          `json:"questionIndex"`
	QuestionCount int          `json:"questionCount"`
	Prompt        string       `json:"prompt,omitempty"`
	Options       []string     `json:"options,omitempty"`
	Reveal        []OptionMark `json:"reveal,omitempty"`
	Score         int          `json:"score"`
	Remaining     float64      `json:"remainingSeconds"`
	Clamped       bool         `json:"clamped,omitempty"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Results summarizes a completed session together with its leaderboard placement.
type Results struct {
	Record             ScoreRecord   `json:"record"`
	Rank               int           `json:"rank,omitempty"` // 1-based; zero when unavailable
	RankUnavailable    bool          `json:"rankUnavailable,omitempty"`
	PersistenceWarning bool          `json:"persistenceWarning,omitempty"`
	Standings          []ScoreRecord `json:"standings,omitempty"`
}
