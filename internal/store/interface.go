package store

import (
	"context"
	"errors"

	"crusty-text/internal/model"
	"crusty-text/internal/wordfreq"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("document not found")
)

type Store interface {
	Save(ctx context.Context, doc *model.Document) error
	Get(ctx context.Context, id uuid.UUID) (*model.Document, error)
	List(ctx context.Context, limit int) ([]model.Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.DocumentStatus) error
	SaveWords(ctx context.Context, id uuid.UUID, words wordfreq.Table) error
	Words(ctx context.Context, id uuid.UUID) (wordfreq.Table, error)
}
