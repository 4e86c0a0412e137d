// Package files persists image blobs and hands back the stable URL
// the vision service fetches them through.
package files

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/xaenox/calbot/internal/models"
	"github.com/xaenox/calbot/internal/storage"
)

// ErrNoBaseURL is returned when no public base URL is configured, so
// a stored blob would not be reachable by the extraction service.
var ErrNoBaseURL = errors.New("public base URL not configured")

type Store struct {
	storage storage.Storage
	baseURL string
}

func NewStore(st storage.Storage, baseURL string) *Store {
	return &Store{
		storage: st,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Save stores the blob and returns its public URL.
func (s *Store) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	if s.baseURL == "" {
		return "", ErrNoBaseURL
	}

	file := &models.File{
		ID:          uuid.New().String(),
		ContentType: contentType,
		Data:        data,
	}
	if err := s.storage.SaveFile(ctx, file); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	return fmt.Sprintf("%s/files/%s", s.baseURL, file.ID), nil
}
