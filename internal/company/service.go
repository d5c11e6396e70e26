package company

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	internal "github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/docstore"
)

// Service reads the company directory.
type Service struct {
	companies docstore.Collection
	logger    *slog.Logger
}

func NewService(store docstore.Store, logger *slog.Logger) *Service {
	return &Service{
		companies: store.Collection(Collection),
		logger:    logger,
	}
}

// The companies collection has no soft-delete flag; the directory is
// the whole collection.
func directoryQuery() docstore.Query {
	return docstore.Query{}
}

func sortedCompanies(docs []docstore.Document) []Company {
	companies := make([]Company, 0, len(docs))
	for _, d := range docs {
		companies = append(companies, fromDocument(d))
	}
	sort.SliceStable(companies, func(i, j int) bool {
		return companies[i].CreatedAt.After(companies[j].CreatedAt)
	})
	return companies
}

// List returns the companies, newest first.
func (s *Service) List(ctx context.Context) ([]Company, error) {
	docs, err := s.companies.Find(ctx, directoryQuery())
	if err != nil {
		return nil, err
	}
	return sortedCompanies(docs), nil
}

// GetByID returns one company.
func (s *Service) GetByID(ctx context.Context, id string) (Company, error) {
	doc, err := s.companies.Get(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Company{}, internal.ErrCompanyNotFound
		}
		return Company{}, err
	}
	return fromDocument(doc), nil
}

// Watch delivers the full directory on every change.
func (s *Service) Watch(ctx context.Context, onData func([]Company), onError func(error)) (docstore.Unsubscribe, error) {
	return s.companies.Watch(ctx, directoryQuery(), func(docs []docstore.Document) {
		onData(sortedCompanies(docs))
	}, onError)
}
