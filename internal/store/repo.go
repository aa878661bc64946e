package store

import (
	"context"
	"time"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/performance"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	// SessionID narrows decision queries; RunID narrows episode queries.
	SessionID string
	RunID     string
	// Purpose narrows LLM event queries.
	Purpose string
}

// SnapshotData is the quiz state needed to resume a session.
type SnapshotData struct {
	Version     int                  `json:"version"`
	SessionID   string               `json:"session_id"`
	Level       difficulty.Level     `json:"level"`
	Language    string               `json:"language"`
	Performance performance.Snapshot `json:"performance"`
	LastCorrect bool                 `json:"last_correct"`
}

// SnapshotVersion is written into every saved SnapshotData.
const SnapshotVersion = 1

// Snapshot is a point-in-time capture of quiz state.
type Snapshot struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages quiz state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot. A zero Sequence is filled with the
	// current global sequence.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// DecisionEventData is one difficulty decision.
type DecisionEventData struct {
	SessionID       string
	QuestionID      string
	Level           difficulty.Level
	Correct         bool
	ResponseMs      int64
	Accuracy        float64
	NextLevel       difficulty.Level
	Source          string
	ClassifierScore *float64
	PolicyAction    string
	HeuristicOnly   bool
}

// DecisionRecord is a stored decision.
type DecisionRecord struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	DecisionEventData
}

// DecisionStats aggregates stored decisions.
type DecisionStats struct {
	Total         int
	Correct       int
	HeuristicOnly int
	ByLevel       map[difficulty.Level]int
	BySource      map[string]int
}

// EpisodeEventData is one finished training or evaluation episode.
type EpisodeEventData struct {
	RunID       string
	Kind        string // "train" or "evaluate"
	Episode     int
	Steps       int
	TotalReward float64
	// History is the JSON-encoded list of (level, reward) pairs.
	History string
}

// EpisodeRecord is a stored episode.
type EpisodeRecord struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	EpisodeEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request.
type LLMEventRecord struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM requests by purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to recorded events.
type EventRepo interface {
	AppendDecision(ctx context.Context, data DecisionEventData) error
	AppendEpisode(ctx context.Context, data EpisodeEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	QueryDecisions(ctx context.Context, opts QueryOpts) ([]DecisionRecord, error)
	QueryEpisodes(ctx context.Context, opts QueryOpts) ([]EpisodeRecord, error)
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one LLM event, or nil if id does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEventRecord, error)

	DecisionStats(ctx context.Context, sessionID string) (*DecisionStats, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
