package core

import (
	"bytes"
	"context"
)

type (
	// Snippet is a saved piece of code shared out of band via the REST API.
	// Live room documents are never stored; only explicit saves become snippets.
	Snippet struct {
		Code     bytes.Buffer
		Language string
	}

	SnippetStore interface {
		FindID(ctx context.Context, id string) (*Snippet, error)
		Create(ctx context.Context, snippet *Snippet) (string, error)
	}

	// RoomInfo describes one live room for the occupancy listing.
	RoomInfo struct {
		ID         string `json:"id"`
		Users      int    `json:"users"`
		Language   string `json:"language"`
		LastActive int64  `json:"lastActive"`
	}
)
