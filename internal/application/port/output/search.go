package output

import (
	"context"

	"articlegen/internal/domain/entity"
)

type SearchPort interface {
	Search(ctx context.Context, query string) ([]entity.SearchResult, error)
}

type PageReaderPort interface {
	Read(ctx context.Context, url string) (string, error)
	Close()
}
