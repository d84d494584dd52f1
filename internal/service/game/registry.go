package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
	"github.com/google/uuid"
)

var (
	ErrScenarioRequired = errors.New("scenario id is required")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionAttached  = errors.New("session already attached")
)

// Record 是 HTTP 创建接口产出的会话记录。真正的编排器实例
// 在 WebSocket 接入时才构造并绑定。
type Record struct {
	ID        string        `json:"id"`
	Scenario  game.Scenario `json:"scenario"`
	Duration  *int          `json:"durationSeconds"`
	CreatedAt time.Time     `json:"createdAt"`
	Session   *Session      `json:"-"`
}

// Registry 维护进程内的会话记录。
type Registry struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewRegistry bootstraps the in-memory session registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[string]*Record)}
}

// Create provisions a session record bound to a scenario and duration mode.
func (r *Registry) Create(_ context.Context, scenario game.Scenario, duration *int) (*Record, error) {
	if scenario.ID == "" {
		return nil, ErrScenarioRequired
	}

	record := &Record{
		ID:        uuid.NewString(),
		Scenario:  scenario,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.records[record.ID] = record
	r.mu.Unlock()

	return record, nil
}

// Get retrieves a session record by identifier.
func (r *Registry) Get(_ context.Context, id string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return record, nil
}

// Attach 把运行中的编排器绑定到记录上，只允许绑定一次。
func (r *Registry) Attach(id string, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return ErrSessionNotFound
	}
	if record.Session != nil {
		return ErrSessionAttached
	}
	record.Session = session
	return nil
}

// Detach 解绑编排器实例，允许浏览器重试接入。
func (r *Registry) Detach(id string) {
	r.mu.Lock()
	if record, ok := r.records[id]; ok {
		record.Session = nil
	}
	r.mu.Unlock()
}

// Remove drops a session record.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.records, id)
	r.mu.Unlock()
}
