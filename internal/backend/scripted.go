package backend

import (
	"context"
	"fmt"
	"sync"
)

var _ Backend = (*Scripted)(nil)

// Reply is one scripted response. Handler, when set, takes precedence over
// Output and Err.
type Reply struct {
	Output  string
	Err     error
	Handler func(ctx context.Context, req Request) (string, error)
}

// Scripted is a test double that answers by response format name and records
// every request it receives.
type Scripted struct {
	mu      sync.Mutex
	replies map[string]Reply
	calls   []Request
}

// NewScripted returns a Scripted backend with the given replies keyed by
// schema name.
func NewScripted(replies map[string]Reply) *Scripted {
	return &Scripted{replies: replies}
}

// Set replaces the reply for schemaName.
func (s *Scripted) Set(schemaName string, r Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replies == nil {
		s.replies = make(map[string]Reply)
	}
	s.replies[schemaName] = r
}

func (s *Scripted) Generate(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	r, ok := s.replies[req.SchemaName]
	s.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("scripted backend: no reply for %q", req.SchemaName)
	}
	if r.Handler != nil {
		return r.Handler(ctx, req)
	}
	return r.Output, r.Err
}

// Calls returns a copy of every request received so far.
func (s *Scripted) Calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many requests used schemaName.
func (s *Scripted) CallCount(schemaName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.SchemaName == schemaName {
			n++
		}
	}
	return n
}
