package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/marksheet/engine"
)

const (
	sessionName  = "marksheet"
	sessionIDKey = "id"
	workspaceTTL = 24 * time.Hour
)

// Workspace is one session's loaded dataset.
type Workspace struct {
	Name     string
	Analyzer *engine.Analyzer
	LoadedAt time.Time
	usedAt   time.Time
}

// Registry maps session ids to workspaces.
type Registry struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{workspaces: make(map[string]*Workspace)}
}

// Get returns the workspace of a session and marks it used.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[id]
	if ok {
		ws.usedAt = time.Now()
	}
	return ws, ok
}

// Put replaces the workspace of a session.
func (r *Registry) Put(id string, ws *Workspace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws.usedAt = time.Now()
	r.workspaces[id] = ws
}

// Delete drops the workspace of a session.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, id)
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Prune drops workspaces idle for longer than workspaceTTL at now and
// returns how many were dropped.
func (r *Registry) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, ws := range r.workspaces {
		if now.Sub(ws.usedAt) > workspaceTTL {
			delete(r.workspaces, id)
			n++
		}
	}
	return n
}

// sessionID returns the caller's session id, issuing one on first contact.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, error) {
	// A cookie that no longer decodes yields a fresh session.
	session, _ := s.sessionStore.Get(r, sessionName)
	if id, ok := session.Values[sessionIDKey].(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	session.Values[sessionIDKey] = id
	if err := session.Save(r, w); err != nil {
		return "", err
	}
	return id, nil
}
