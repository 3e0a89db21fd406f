package chat

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/storeutil"
)

// NewThreadAgentCodeStart is the first code allocated to a fresh-context
// child-agent run (spec §4.9 "New-thread agents").
const NewThreadAgentCodeStart = 1000

// NewThreadAgent tracks one "new "-prefixed fresh-context run: an agent
// that never touches the main chat's session history.
type NewThreadAgent struct {
	AgentCode      int     `json:"agent_code"`
	Task           string  `json:"task"`
	ChatID         string  `json:"chat_id"`
	UserID         string  `json:"user_id"`
	StartedAt      int64   `json:"started_at"`
	LastResponse   *string `json:"last_response,omitempty"`
	LastResponseAt *int64  `json:"last_response_at,omitempty"`
	Status         string  `json:"status"`
}

// New-thread agent statuses, mirroring Tracker's status vocabulary.
const (
	NewThreadStatusRunning   = "running"
	NewThreadStatusCompleted = "completed"
	NewThreadStatusFailed    = "failed"
)

// DefaultNewThreadPath mirrors the original tool's new-thread-agent state file.
func DefaultNewThreadPath(home string) string {
	return filepath.Join(home, ".cursor-enhanced", "new-thread-agents.json")
}

type newThreadFile struct {
	NextCode int                       `json:"next_code"`
	Agents   map[string]NewThreadAgent `json:"agents"`
}

// NewThreadAgentStore allocates and tracks new-thread agents, persisted as
// JSON (spec §4.9), keyed by their numeric agent code.
type NewThreadAgentStore struct {
	Path string
	mu   sync.Mutex
}

// NewNewThreadAgentStore creates a NewThreadAgentStore at path.
func NewNewThreadAgentStore(path string) *NewThreadAgentStore {
	return &NewThreadAgentStore{Path: path}
}

func (s *NewThreadAgentStore) load() newThreadFile {
	var f newThreadFile
	storeutil.ReadJSONOrDefault(s.Path, &f)
	if f.Agents == nil {
		f.Agents = make(map[string]NewThreadAgent)
	}
	if f.NextCode < NewThreadAgentCodeStart {
		f.NextCode = NewThreadAgentCodeStart
	}
	return f
}

func (s *NewThreadAgentStore) save(f newThreadFile) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	lock, err := storeutil.Acquire(s.Path)
	if err != nil {
		return err
	}
	defer lock.Release()
	return storeutil.WriteJSONAtomic(s.Path, f)
}

// Allocate reserves the next monotonic agent code and records a running
// new-thread agent for it.
func (s *NewThreadAgentStore) Allocate(task, chatID, userID string, startedAt int64) (NewThreadAgent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.load()
	code := f.NextCode
	f.NextCode = code + 1

	agent := NewThreadAgent{
		AgentCode: code,
		Task:      task,
		ChatID:    chatID,
		UserID:    userID,
		StartedAt: startedAt,
		Status:    NewThreadStatusRunning,
	}
	f.Agents[strconv.Itoa(code)] = agent

	if err := s.save(f); err != nil {
		return NewThreadAgent{}, err
	}
	return agent, nil
}

// UpdateResponse records the final response (or failure) of a new-thread
// agent run.
func (s *NewThreadAgentStore) UpdateResponse(code int, response string, success bool, completedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.load()
	key := strconv.Itoa(code)
	agent, ok := f.Agents[key]
	if !ok {
		return nil
	}

	agent.LastResponse = &response
	agent.LastResponseAt = &completedAt
	if success {
		agent.Status = NewThreadStatusCompleted
	} else {
		agent.Status = NewThreadStatusFailed
	}
	f.Agents[key] = agent
	return s.save(f)
}

// Get looks up a new-thread agent by its code.
func (s *NewThreadAgentStore) Get(code int) (NewThreadAgent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.load()
	agent, ok := f.Agents[strconv.Itoa(code)]
	return agent, ok
}

// List returns every new-thread agent for chatID, most recently started first.
func (s *NewThreadAgentStore) List(chatID string) []NewThreadAgent {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.load()

	var out []NewThreadAgent
	for _, agent := range f.Agents {
		if chatID == "" || agent.ChatID == chatID {
			out = append(out, agent)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt > out[j].StartedAt })
	return out
}
