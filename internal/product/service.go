package product

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	internal "github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/docstore"
)

// Service reads the product catalog.
type Service struct {
	products docstore.Collection
	logger   *slog.Logger
}

func NewService(store docstore.Store, logger *slog.Logger) *Service {
	return &Service{
		products: store.Collection(Collection),
		logger:   logger,
	}
}

func catalogQuery() docstore.Query {
	return docstore.Query{}.Where("deleted", false)
}

func sortedProducts(docs []docstore.Document) []Product {
	products := make([]Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, fromDocument(d))
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products
}

// List returns the non-deleted catalog, newest first.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	docs, err := s.products.Find(ctx, catalogQuery())
	if err != nil {
		return nil, err
	}
	return sortedProducts(docs), nil
}

// GetByID returns one catalog entry with display defaults applied.
func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	doc, err := s.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Product{}, internal.ErrProductNotFound
		}
		return Product{}, err
	}
	return fromDocument(doc), nil
}

// Watch delivers the full catalog on every change.
func (s *Service) Watch(ctx context.Context, onData func([]Product), onError func(error)) (docstore.Unsubscribe, error) {
	return s.products.Watch(ctx, catalogQuery(), func(docs []docstore.Document) {
		onData(sortedProducts(docs))
	}, onError)
}
