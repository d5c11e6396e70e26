package wishlist_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wedflix/command-center/internal/cache"
	"github.com/wedflix/command-center/internal/core/pagination"
	"github.com/wedflix/command-center/internal/docstore"
	"github.com/wedflix/command-center/internal/product"
	"github.com/wedflix/command-center/internal/wishlist"
)

// Fake catalog for testing
type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]product.Product
	failing  map[string]bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: make(map[string]product.Product),
		failing:  make(map[string]bool),
	}
}

func (f *fakeCatalog) add(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[id] = product.Product{ID: id, Name: name}
}

func (f *fakeCatalog) failFor(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[id] = true
}

func (f *fakeCatalog) GetByID(_ context.Context, id string) (product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[id] {
		return product.Product{}, errors.New("catalog unavailable")
	}
	p, ok := f.products[id]
	if !ok {
		return product.Product{}, errors.New("product not found")
	}
	return p, nil
}

var _ = Describe("WishlistService", func() {
	var (
		ctx     context.Context
		store   *docstore.MemStore
		catalog *fakeCatalog
		service *wishlist.Service
	)

	fullPage := pagination.PageConfig{PageSize: 10, PageNumber: 1}

	// Entries carry the consumer apps' field casing: AppName and
	// created, not snake_case.
	seedEntry := func(id, productID, userID, appName string, deleted bool) {
		col := store.Collection(wishlist.Collection)
		Expect(col.Set(ctx, id, map[string]any{
			"product_id": productID,
			"user_id":    userID,
			"AppName":    appName,
			"deleted":    deleted,
			"created":    time.Now(),
		})).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = docstore.NewMemStore()
		catalog = newFakeCatalog()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = wishlist.NewService(store, catalog, cache.New(nil, 0, logger), logger)
	})

	Describe("Page", func() {
		It("should group entries by product with distinct user counts", func() {
			catalog.add("p1", "Camera")
			catalog.add("p2", "Drone")
			seedEntry("e1", "p1", "u1", "Wedflix", false)
			seedEntry("e2", "p1", "u2", "Wedflix", false)
			seedEntry("e3", "p2", "u1", "Wedflix", false)

			items, total, err := service.Page(ctx, "", fullPage)
			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal(2))
			Expect(items).To(HaveLen(2))
			Expect(items[0].ProductID).To(Equal("p1"))
			Expect(items[0].UserCount).To(Equal(2))
			Expect(items[1].ProductID).To(Equal("p2"))
			Expect(items[1].UserCount).To(Equal(1))
		})

		It("should count a user once per product regardless of duplicate entries", func() {
			catalog.add("p1", "Camera")
			seedEntry("e1", "p1", "u1", "Wedflix", false)
			seedEntry("e2", "p1", "u1", "Wedflix", false)
			seedEntry("e3", "p1", "u1", "Wedflix", false)

			items, _, err := service.Page(ctx, "", fullPage)
			Expect(err).ToNot(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].UserCount).To(Equal(1))
		})

		It("should exclude deleted entries", func() {
			catalog.add("p1", "Camera")
			seedEntry("e1", "p1", "u1", "Wedflix", false)
			seedEntry("e2", "p1", "u2", "Wedflix", true)

			items, _, err := service.Page(ctx, "", fullPage)
			Expect(err).ToNot(HaveOccurred())
			Expect(items[0].UserCount).To(Equal(1))
		})

		It("should filter by app name case-insensitively", func() {
			catalog.add("p1", "Camera")
			catalog.add("p2", "Drone")
			seedEntry("e1", "p1", "u1", "WEDFLIX", false)
			seedEntry("e2", "p1", "u2", "wedflix", false)
			seedEntry("e3", "p2", "u3", "Mallflix", false)

			items, total, err := service.Page(ctx, "Wedflix", fullPage)
			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal(1))
			Expect(items).To(HaveLen(1))
			Expect(items[0].ProductID).To(Equal("p1"))
			Expect(items[0].UserCount).To(Equal(2))
		})

		It("should resolve catalog data for the visible rows", func() {
			catalog.add("p1", "Camera")
			seedEntry("e1", "p1", "u1", "Wedflix", false)

			items, _, err := service.Page(ctx, "", fullPage)
			Expect(err).ToNot(HaveOccurred())
			Expect(items[0].Product).ToNot(BeNil())
			Expect(items[0].Product.Name).To(Equal("Camera"))
		})

		It("should keep the row with a nil product when the catalog lookup fails", func() {
			catalog.add("p1", "Camera")
			catalog.failFor("p2")
			seedEntry("e1", "p1", "u1", "Wedflix", false)
			seedEntry("e2", "p2", "u1", "Wedflix", false)
			seedEntry("e3", "p2", "u2", "Wedflix", false)

			items, _, err := service.Page(ctx, "", fullPage)
			Expect(err).ToNot(HaveOccurred())
			Expect(items).To(HaveLen(2))
			Expect(items[0].ProductID).To(Equal("p2"))
			Expect(items[0].UserCount).To(Equal(2))
			Expect(items[0].Product).To(BeNil())
			Expect(items[1].Product).ToNot(BeNil())
		})

		It("should slice the ranked rows into pages", func() {
			for i := 0; i < 5; i++ {
				pid := fmt.Sprintf("p%d", i+1)
				catalog.add(pid, pid)
				for j := 0; j <= i; j++ {
					seedEntry(fmt.Sprintf("e%d-%d", i, j), pid, fmt.Sprintf("u%d", j), "Wedflix", false)
				}
			}

			items, total, err := service.Page(ctx, "", pagination.PageConfig{PageSize: 2, PageNumber: 2})
			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal(5))
			Expect(items).To(HaveLen(2))
			Expect(items[0].UserCount).To(Equal(3))
			Expect(items[1].UserCount).To(Equal(2))
		})
	})

	Describe("TotalProducts", func() {
		It("should count distinct products for the requested app only", func() {
			seedEntry("e1", "p1", "u1", "Wedflix", false)
			seedEntry("e2", "p1", "u2", "WEDFLIX", false)
			seedEntry("e3", "p2", "u3", "Mallflix", false)

			total, err := service.TotalProducts(ctx, "wedflix")
			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal(1))

			total, err = service.TotalProducts(ctx, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal(2))
		})
	})

	Describe("Subscribe", func() {
		It("should recompute the grouped page when entries change", func() {
			catalog.add("p1", "Camera")
			catalog.add("p2", "Drone")
			seedEntry("e1", "p1", "u1", "Wedflix", false)

			var latest []wishlist.GroupedItem
			unsubscribe, err := service.Subscribe(ctx, "", fullPage,
				func(items []wishlist.GroupedItem, _ int) { latest = items },
				func(err error) { Fail(fmt.Sprintf("unexpected stream error: %v", err)) },
			)
			Expect(err).ToNot(HaveOccurred())
			defer unsubscribe()

			Expect(latest).To(HaveLen(1))

			seedEntry("e2", "p2", "u1", "Wedflix", false)
			seedEntry("e3", "p2", "u2", "Wedflix", false)

			Expect(latest).To(HaveLen(2))
			Expect(latest[0].ProductID).To(Equal("p2"))
		})

		It("should keep the setup-time total while the page updates live", func() {
			catalog.add("p1", "Camera")
			catalog.add("p2", "Drone")
			seedEntry("e1", "p1", "u1", "Wedflix", false)

			var (
				latest    []wishlist.GroupedItem
				lastTotal int
			)
			unsubscribe, err := service.Subscribe(ctx, "", fullPage,
				func(items []wishlist.GroupedItem, total int) {
					latest = items
					lastTotal = total
				},
				func(err error) { Fail(fmt.Sprintf("unexpected stream error: %v", err)) },
			)
			Expect(err).ToNot(HaveOccurred())
			defer unsubscribe()

			Expect(lastTotal).To(Equal(1))

			seedEntry("e2", "p2", "u1", "Wedflix", false)

			Expect(latest).To(HaveLen(2))
			Expect(lastTotal).To(Equal(1))
		})
	})

	Describe("UsersForProduct", func() {
		It("should look users up in the collection owned by the entry's app", func() {
			Expect(store.Collection("wedflix_users").Set(ctx, "u1", map[string]any{
				"firstName": "Wendy", "lastName": "Wade",
				"email": "wendy@example.com", "phoneNumber": "+628111",
			})).To(Succeed())
			Expect(store.Collection("mallflix_users").Set(ctx, "u2", map[string]any{
				"firstName": "Mallory", "lastName": "Moss",
				"email": "mallory@example.com",
			})).To(Succeed())

			seedEntry("e1", "p1", "u1", "Wedflix", false)
			seedEntry("e2", "p1", "u2", "MALLFLIX", false)

			users, err := service.UsersForProduct(ctx, "p1")
			Expect(err).ToNot(HaveOccurred())
			Expect(users).To(HaveLen(2))

			byID := map[string]wishlist.User{}
			for _, u := range users {
				byID[u.ID] = u
			}
			Expect(byID["u1"].Name).To(Equal("Wendy Wade"))
			Expect(byID["u1"].Phone).To(Equal("+628111"))
			Expect(byID["u1"].AppName).To(Equal("wedflix"))
			Expect(byID["u2"].Name).To(Equal("Mallory Moss"))
			Expect(byID["u2"].AppName).To(Equal("mallflix"))
		})

		It("should degrade a failed account lookup to an id-only placeholder", func() {
			seedEntry("e1", "p1", "u1", "Wedflix", false)

			users, err := service.UsersForProduct(ctx, "p1")
			Expect(err).ToNot(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].ID).To(Equal("u1"))
			Expect(users[0].Name).To(BeEmpty())
		})
	})
})
