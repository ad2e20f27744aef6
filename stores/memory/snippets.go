package memory

import (
	"context"
	"fmt"
	"sync"

	"coderoom-server/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type snippetStore struct {
	mu       sync.RWMutex
	snippets map[string]core.Snippet
}

func NewSnippetStore() core.SnippetStore {
	return &snippetStore{
		snippets: make(map[string]core.Snippet),
	}
}

func (s *snippetStore) FindID(ctx context.Context, id string) (*core.Snippet, error) {
	log := logrus.WithField("snippet_id", id)

	s.mu.RLock()
	snippet, ok := s.snippets[id]
	s.mu.RUnlock()

	if ok {
		log.Info("Snippet retrieved successfully")
		return &snippet, nil
	}

	log.WithField("error", "snippet not found").Warn("Snippet with specified ID not found")
	return nil, fmt.Errorf("snippet with id %s not found", id)
}

func (s *snippetStore) Create(ctx context.Context, snippet *core.Snippet) (string, error) {
	id := ulid.Make().String()

	s.mu.Lock()
	s.snippets[id] = *snippet
	s.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{
		"snippet_id":  id,
		"code_length": snippet.Code.Len(),
		"language":    snippet.Language,
	})
	log.Info("Snippet created successfully")

	return id, nil
}
