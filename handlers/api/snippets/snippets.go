package snippets

import (
	"bytes"
	"encoding/json"
	"net/http"

	"coderoom-server/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	CreateSnippetRequest struct {
		Code     string `json:"code"`
		Language string `json:"language"`
	}

	CreateSnippetResponse struct {
		ID string `json:"id"`
	}

	SnippetResponse struct {
		ID       string `json:"id"`
		Code     string `json:"code"`
		Language string `json:"language"`
	}
)

// HandleCreate saves a snippet and returns its id for sharing.
func HandleCreate(store core.SnippetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSnippetRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logrus.WithField("error", err).Error("Failed to decode request")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		snippet := core.Snippet{
			Code:     *bytes.NewBufferString(req.Code),
			Language: req.Language,
		}
		id, err := store.Create(r.Context(), &snippet)
		if err != nil {
			logrus.WithField("error", err).Error("Failed to create snippet")
			http.Error(w, "Failed to create snippet", http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, CreateSnippetResponse{ID: id})
	}
}

// HandleGet retrieves a snippet by id.
func HandleGet(store core.SnippetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		snippet, err := store.FindID(r.Context(), id)
		if err != nil {
			logrus.WithFields(logrus.Fields{"snippet_id": id, "error": err}).Warn("Snippet not found")
			http.Error(w, "Snippet not found", http.StatusNotFound)
			return
		}

		render.JSON(w, r, SnippetResponse{
			ID:       id,
			Code:     snippet.Code.String(),
			Language: snippet.Language,
		})
	}
}
