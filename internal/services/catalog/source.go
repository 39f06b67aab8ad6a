package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/catalog"
	"github.com/joseph-ayodele/label-matcher/internal/repository"
)

// Source loads the full list of catalog entries.
type Source interface {
	Kind() constants.SourceKind
	Name() string
	Load(ctx context.Context) ([]catalog.Entry, error)
}

// FileSource reads a JSON or XLSX catalog from disk.
type FileSource struct {
	kind  constants.SourceKind
	path  string
	sheet string
}

func NewFileSource(kind constants.SourceKind, path, sheet string) (*FileSource, error) {
	if !kind.IsFile() {
		return nil, fmt.Errorf("%w: %q is not a file source", common.ErrInvalidInput, kind)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: catalog path is required", common.ErrInvalidInput)
	}
	return &FileSource{kind: kind, path: path, sheet: sheet}, nil
}

func (s *FileSource) Kind() constants.SourceKind { return s.kind }
func (s *FileSource) Name() string               { return string(s.kind) + ":" + s.path }
func (s *FileSource) Path() string               { return s.path }

func (s *FileSource) Load(ctx context.Context) ([]catalog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.kind == constants.SourceXLSX {
		return repository.LoadXLSXCatalog(s.path, s.sheet)
	}
	return repository.LoadJSONCatalog(s.path)
}

// OfferSource reads the catalog from the offers table.
type OfferSource struct {
	kind        constants.SourceKind
	repo        repository.OfferRepository
	transitOnly bool
	now         func() time.Time
}

// NewOfferSource builds a SQL backed source. With transitOnly set only the
// current day's in-transit offers are loaded.
func NewOfferSource(kind constants.SourceKind, repo repository.OfferRepository, transitOnly bool) (*OfferSource, error) {
	if !kind.IsSQL() {
		return nil, fmt.Errorf("%w: %q is not a database source", common.ErrInvalidInput, kind)
	}
	if repo == nil {
		return nil, errors.New("offer repository is required")
	}
	return &OfferSource{kind: kind, repo: repo, transitOnly: transitOnly, now: time.Now}, nil
}

func (s *OfferSource) Kind() constants.SourceKind { return s.kind }

func (s *OfferSource) Name() string {
	if s.transitOnly {
		return string(s.kind) + ":transit"
	}
	return string(s.kind) + ":all"
}

func (s *OfferSource) Load(ctx context.Context) ([]catalog.Entry, error) {
	var (
		offers []repository.Offer
		err    error
	)
	if s.transitOnly {
		offers, err = s.repo.ListInTransit(ctx, s.now())
	} else {
		offers, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	return repository.Entries(offers), nil
}
