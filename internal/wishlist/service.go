package wishlist

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wedflix/command-center/internal/cache"
	"github.com/wedflix/command-center/internal/core/pagination"
	"github.com/wedflix/command-center/internal/docstore"
	"github.com/wedflix/command-center/internal/product"
)

const distinctCountKey = "cc:wishlist:products:count"

// productLookups caps the parallel catalog reads per snapshot.
const productLookups = 8

// ProductResolver resolves catalog entries for grouped rows.
type ProductResolver interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
}

// Service aggregates raw wishlist entries into per-product demand.
type Service struct {
	entries  docstore.Collection
	store    docstore.Store
	products ProductResolver
	counts   *cache.Cache
	logger   *slog.Logger
}

func NewService(store docstore.Store, products ProductResolver, counts *cache.Cache, logger *slog.Logger) *Service {
	return &Service{
		entries:  store.Collection(Collection),
		store:    store,
		products: products,
		counts:   counts,
		logger:   logger,
	}
}

func activeEntriesQuery() docstore.Query {
	return docstore.Query{}.Where("deleted", false)
}

func countKey(appName string) string {
	if appName == "" {
		return distinctCountKey
	}
	return distinctCountKey + ":" + strings.ToLower(appName)
}

// group folds entries into one row per product with a distinct user
// set. The app-name filter matches case-insensitively and runs here
// rather than in the query so that entries written with mixed casing
// still match. First-seen product order is preserved until the count
// sort.
func group(docs []docstore.Document, appName string) []GroupedItem {
	type bucket struct {
		userIDs []string
		seen    map[string]struct{}
	}
	buckets := make(map[string]*bucket)
	order := make([]string, 0)

	for _, d := range docs {
		e := entryFromDocument(d)
		if e.ProductID == "" {
			continue
		}
		if appName != "" && !strings.EqualFold(e.AppName, appName) {
			continue
		}
		b, ok := buckets[e.ProductID]
		if !ok {
			b = &bucket{seen: make(map[string]struct{})}
			buckets[e.ProductID] = b
			order = append(order, e.ProductID)
		}
		if _, dup := b.seen[e.UserID]; dup || e.UserID == "" {
			continue
		}
		b.seen[e.UserID] = struct{}{}
		b.userIDs = append(b.userIDs, e.UserID)
	}

	items := make([]GroupedItem, 0, len(order))
	for _, pid := range order {
		b := buckets[pid]
		items = append(items, GroupedItem{
			ProductID: pid,
			UserCount: len(b.userIDs),
			UserIDs:   b.userIDs,
		})
	}
	return items
}

// resolveProducts fills in catalog data for each row in parallel. A
// failed lookup leaves the row's Product nil instead of failing the
// whole snapshot.
func (s *Service) resolveProducts(ctx context.Context, items []GroupedItem) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(productLookups)

	var mu sync.Mutex
	for i := range items {
		g.Go(func() error {
			p, err := s.products.GetByID(ctx, items[i].ProductID)
			if err != nil {
				s.logger.Warn("wishlist product lookup failed", "product_id", items[i].ProductID, "error", err)
				return nil
			}
			mu.Lock()
			items[i].Product = &p
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
}

// toPage turns a raw snapshot into one page of grouped rows: group,
// sort by demand, slice, then resolve products for the visible rows
// only.
func (s *Service) toPage(ctx context.Context, docs []docstore.Document, appName string, cfg pagination.PageConfig) []GroupedItem {
	items := group(docs, appName)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UserCount > items[j].UserCount
	})

	page := pagination.Slice(items, cfg)
	s.resolveProducts(ctx, page)
	return page
}

// TotalProducts returns the number of distinct products wished for in
// one app, read through the count cache. Like the pending booking
// total it is deliberately stale: the live page updates on every
// change while the displayed total lags until TTL expiry.
func (s *Service) TotalProducts(ctx context.Context, appName string) (int, error) {
	key := countKey(appName)
	if n, ok := s.counts.GetInt(ctx, key); ok {
		return n, nil
	}
	docs, err := s.entries.Find(ctx, activeEntriesQuery())
	if err != nil {
		return 0, err
	}
	n := len(group(docs, appName))
	s.counts.SetInt(ctx, key, n)
	return n, nil
}

// Page is the one-shot grouped view.
func (s *Service) Page(ctx context.Context, appName string, cfg pagination.PageConfig) ([]GroupedItem, int, error) {
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}
	totalCount, err := s.TotalProducts(ctx, appName)
	if err != nil {
		return nil, 0, err
	}
	docs, err := s.entries.Find(ctx, activeEntriesQuery())
	if err != nil {
		return nil, 0, err
	}
	return s.toPage(ctx, docs, appName, cfg), totalCount, nil
}

// Subscribe establishes the live grouped view: the page is recomputed
// from scratch on every change to the entries collection, while the
// total is computed once at setup. onError reports transport failures
// and the last delivered page stays put.
func (s *Service) Subscribe(ctx context.Context, appName string, cfg pagination.PageConfig, onData func([]GroupedItem, int), onError func(error)) (docstore.Unsubscribe, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	totalCount, err := s.TotalProducts(ctx, appName)
	if err != nil {
		return nil, err
	}
	return s.entries.Watch(ctx, activeEntriesQuery(), func(docs []docstore.Document) {
		onData(s.toPage(ctx, docs, appName, cfg), totalCount)
	}, onError)
}

// UsersForProduct resolves the accounts wishing for one product. Each
// entry's app decides which account collection to read; a failed
// lookup degrades to an id-only placeholder so one broken account does
// not hide the rest.
func (s *Service) UsersForProduct(ctx context.Context, productID string) ([]User, error) {
	docs, err := s.entries.Find(ctx, activeEntriesQuery().Where("product_id", productID))
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(docs))
	seen := make(map[string]struct{})
	for _, d := range docs {
		e := entryFromDocument(d)
		if e.UserID == "" {
			continue
		}
		if _, dup := seen[e.UserID]; dup {
			continue
		}
		seen[e.UserID] = struct{}{}

		accounts := s.store.Collection(userCollectionFor(e.AppName))
		doc, err := accounts.Get(ctx, e.UserID)
		if err != nil {
			s.logger.Warn("wishlist user lookup failed", "user_id", e.UserID, "app", e.AppName, "error", err)
			users = append(users, User{ID: e.UserID, AppName: strings.ToLower(e.AppName)})
			continue
		}
		// Account records carry the consumer apps' field casing.
		name := strings.TrimSpace(doc.String("firstName") + " " + doc.String("lastName"))
		users = append(users, User{
			ID:      e.UserID,
			Name:    name,
			Email:   doc.String("email"),
			Phone:   doc.String("phoneNumber"),
			AppName: strings.ToLower(e.AppName),
		})
	}
	return users, nil
}
