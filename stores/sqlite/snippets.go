package sqlite

import (
	"bytes"
	"context"
	"fmt"

	"database/sql"
	stdlog "log"

	"coderoom-server/core"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type snippetStore struct {
	db *sql.DB
}

func NewSnippetStore(dataSourceName string) core.SnippetStore {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		stdlog.Fatal(err)
	}

	sts := `CREATE TABLE IF NOT EXISTS snippets (id TEXT PRIMARY KEY, language TEXT, code BLOB);`
	_, err = db.Exec(sts)
	if err != nil {
		stdlog.Fatal(err)
	}

	return &snippetStore{db}
}

func (s *snippetStore) FindID(ctx context.Context, id string) (*core.Snippet, error) {
	log := logrus.WithField("snippet_id", id)
	log.Debug("Retrieving snippet by ID")
	var (
		language string
		code     []byte
	)
	err := s.db.QueryRowContext(ctx, "SELECT language, code FROM snippets WHERE id = ?", id).Scan(&language, &code)
	if err != nil {
		if err == sql.ErrNoRows {
			log.WithField("error", "snippet not found").Warn("Snippet with specified ID not found")
			return nil, fmt.Errorf("snippet with id %s not found", id)
		}
		log.WithField("error", err).Error("Failed to retrieve snippet")
		return nil, err
	}
	snippet := core.Snippet{
		Code:     *bytes.NewBuffer(code),
		Language: language,
	}
	log.Info("Snippet retrieved successfully")
	return &snippet, nil
}

func (s *snippetStore) Create(ctx context.Context, snippet *core.Snippet) (string, error) {
	id := ulid.Make().String()
	code := snippet.Code.Bytes()
	log := logrus.WithFields(logrus.Fields{
		"snippet_id":  id,
		"code_length": len(code),
		"language":    snippet.Language,
	})

	_, err := s.db.ExecContext(ctx, "INSERT INTO snippets (id, language, code) VALUES (?, ?, ?)", id, snippet.Language, code)
	if err != nil {
		log.WithField("error", err).Error("Failed to create snippet")
		return "", err
	}
	log.Info("Snippet created successfully")
	return id, nil
}
