package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"coderoom-server/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type snippetStore struct {
	basePath string
}

type snippetFile struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

func NewSnippetStore(basePath string) core.SnippetStore {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logrus.WithFields(logrus.Fields{"basePath": basePath, "error": err}).Fatal("Failed to create storage directory")
	}
	return &snippetStore{basePath: basePath}
}

func (s *snippetStore) path(id string) string {
	return filepath.Join(s.basePath, id+".json")
}

func (s *snippetStore) FindID(ctx context.Context, id string) (*core.Snippet, error) {
	log := logrus.WithField("snippet_id", id)

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("error", "snippet not found").Warn("Snippet with specified ID not found")
			return nil, fmt.Errorf("snippet with id %s not found", id)
		}
		log.WithField("error", err).Error("Failed to read snippet")
		return nil, err
	}

	var file snippetFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.WithField("error", err).Error("Failed to decode snippet")
		return nil, err
	}

	snippet := core.Snippet{Language: file.Language}
	snippet.Code.WriteString(file.Code)
	log.Info("Snippet retrieved successfully")
	return &snippet, nil
}

func (s *snippetStore) Create(ctx context.Context, snippet *core.Snippet) (string, error) {
	id := ulid.Make().String()
	log := logrus.WithFields(logrus.Fields{
		"snippet_id":  id,
		"code_length": snippet.Code.Len(),
		"language":    snippet.Language,
	})

	data, err := json.Marshal(snippetFile{
		Language: snippet.Language,
		Code:     snippet.Code.String(),
	})
	if err != nil {
		log.WithField("error", err).Error("Failed to encode snippet")
		return "", err
	}

	if err := os.WriteFile(s.path(id), data, 0o644); err != nil {
		log.WithField("error", err).Error("Failed to write snippet")
		return "", err
	}
	log.Info("Snippet created successfully")
	return id, nil
}
