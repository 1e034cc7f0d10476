package session

import (
	"errors"
	"sync"
	"time"

	"github.com/sllt/railbot/internal/ticket"
)

// PageSize is the fixed number of records shown per page.
const PageSize = 10

// DefaultIdleTTL is how long a conversation may stay silent before its
// result set and log are cleared at the next message.
const DefaultIdleTTL = 10 * time.Minute

var (
	ErrNoPriorQuery = errors.New("no prior query in this conversation")
	ErrAtFirstPage  = errors.New("already at the first page")
	ErrAtLastPage   = errors.New("already at the last page")
)

// Entry is one line of the conversation log.
type Entry struct {
	Role string
	Text string
}

// Session is the per-conversation state: the one authoritative result set,
// the pagination cursor, the last query, and the conversation log. A session
// is owned by its conversation; the mutex only guards against two transports
// (HTTP and queue bridge) delivering for the same conversation at once.
type Session struct {
	mu sync.Mutex

	ID          string
	Results     []ticket.Record
	CurrentPage int
	LastQuery   ticket.Query
	LastSeen    time.Time
	Log         []Entry
}

func New(id string) *Session {
	return &Session{ID: id, CurrentPage: 1}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// ExpireIfIdle clears the result set and conversation log when the gap since
// the last interaction exceeds ttl. Called at the start of message handling,
// never from a background timer. Reports whether state was cleared.
func (s *Session) ExpireIfIdle(now time.Time, ttl time.Duration) bool {
	if s.LastSeen.IsZero() || now.Sub(s.LastSeen) <= ttl {
		return false
	}
	s.Results = nil
	s.Log = nil
	s.CurrentPage = 1
	return true
}

// Touch records an interaction.
func (s *Session) Touch(now time.Time) { s.LastSeen = now }

// SetResults installs a fresh result set and resets the cursor.
func (s *Session) SetResults(q ticket.Query, records []ticket.Record) {
	s.Results = records
	s.LastQuery = q
	s.CurrentPage = 1
}

// Narrow replaces the result set after a follow-up filter and resets the
// cursor to the first page.
func (s *Session) Narrow(records []ticket.Record) {
	s.Results = records
	s.CurrentPage = 1
}

func (s *Session) TotalPages() int {
	return (len(s.Results) + PageSize - 1) / PageSize
}

// PageData returns the records of the current page.
func (s *Session) PageData() []ticket.Record {
	start := (s.CurrentPage - 1) * PageSize
	if start >= len(s.Results) {
		return nil
	}
	end := start + PageSize
	if end > len(s.Results) {
		end = len(s.Results)
	}
	return s.Results[start:end]
}

// PageStartIndex is the 1-based global index of the first record on the
// current page.
func (s *Session) PageStartIndex() int {
	return (s.CurrentPage-1)*PageSize + 1
}

// NextPage advances the cursor. The cursor is left unchanged at the
// boundary and when no query has been run yet.
func (s *Session) NextPage() error {
	if len(s.Results) == 0 {
		return ErrNoPriorQuery
	}
	if s.CurrentPage >= s.TotalPages() {
		return ErrAtLastPage
	}
	s.CurrentPage++
	return nil
}

// PrevPage retreats the cursor, with the same boundary behavior.
func (s *Session) PrevPage() error {
	if len(s.Results) == 0 {
		return ErrNoPriorQuery
	}
	if s.CurrentPage <= 1 {
		return ErrAtFirstPage
	}
	s.CurrentPage--
	return nil
}

// Append adds one conversation-log entry.
func (s *Session) Append(role, text string) {
	s.Log = append(s.Log, Entry{Role: role, Text: text})
}
