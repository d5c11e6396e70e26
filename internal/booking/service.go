package booking

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	internal "github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/cache"
	"github.com/wedflix/command-center/internal/core/pagination"
	"github.com/wedflix/command-center/internal/docstore"
)

const pendingCountKey = "cc:bookings:pending:count"

// Service owns the booking review queue: a live, client-side-sliced
// view over the pending bookings, and the approve/reject transitions.
type Service struct {
	bookings docstore.Collection
	counts   *cache.Cache
	logger   *slog.Logger
}

func NewService(store docstore.Store, counts *cache.Cache, logger *slog.Logger) *Service {
	return &Service{
		bookings: store.Collection(Collection),
		counts:   counts,
		logger:   logger,
	}
}

func pendingQuery() docstore.Query {
	return docstore.Query{}.Where("for_censorship", CensorshipPending)
}

// toPage converts a raw snapshot into one sorted page. The full result
// is recomputed from scratch on every snapshot: sort newest first, then
// slice.
func toPage(docs []docstore.Document, cfg pagination.PageConfig) []Booking {
	bookings := make([]Booking, 0, len(docs))
	for _, d := range docs {
		bookings = append(bookings, fromDocument(d))
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].Created.After(bookings[j].Created)
	})
	return pagination.Slice(bookings, cfg)
}

// TotalPending returns the pending-queue size. The value is read
// through the count cache and is deliberately not kept in sync with the
// live feed: after an insert the page updates live while the displayed
// total lags until the next subscription setup or TTL expiry.
func (s *Service) TotalPending(ctx context.Context) (int, error) {
	if n, ok := s.counts.GetInt(ctx, pendingCountKey); ok {
		return n, nil
	}
	n, err := s.bookings.Count(ctx, pendingQuery())
	if err != nil {
		return 0, err
	}
	s.counts.SetInt(ctx, pendingCountKey, n)
	return n, nil
}

// SubscribePending establishes the live paginated pending queue.
// onData receives the recomputed page plus the total computed once at
// setup; onError receives transport failures and previously delivered
// data stays in place. The returned handle must be called on teardown.
func (s *Service) SubscribePending(ctx context.Context, cfg pagination.PageConfig, onData func([]Booking, int), onError func(error)) (docstore.Unsubscribe, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	totalCount, err := s.TotalPending(ctx)
	if err != nil {
		return nil, err
	}

	return s.bookings.Watch(ctx, pendingQuery(), func(docs []docstore.Document) {
		onData(toPage(docs, cfg), totalCount)
	}, onError)
}

// PendingPage is the one-shot form of SubscribePending, used by the
// plain list endpoint.
func (s *Service) PendingPage(ctx context.Context, cfg pagination.PageConfig) ([]Booking, int, error) {
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}

	totalCount, err := s.TotalPending(ctx)
	if err != nil {
		return nil, 0, err
	}

	docs, err := s.bookings.Find(ctx, pendingQuery())
	if err != nil {
		return nil, 0, err
	}
	return toPage(docs, cfg), totalCount, nil
}

// GetByID returns a single booking.
func (s *Service) GetByID(ctx context.Context, id string) (Booking, error) {
	doc, err := s.bookings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Booking{}, internal.ErrBookingNotFound
		}
		return Booking{}, err
	}
	return fromDocument(doc), nil
}

// Approve marks the booking approved and clears the screening flag.
// The write is idempotent: approving an already-approved booking
// rewrites the same fields.
func (s *Service) Approve(ctx context.Context, id string) error {
	err := s.bookings.Update(ctx, id, map[string]any{
		"for_censorship": CensorshipApproved,
		"for_screening":  0,
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return internal.ErrBookingNotFound
		}
		s.logger.Error("failed to approve booking", "booking_id", id, "error", err)
		return err
	}

	s.counts.Invalidate(ctx, pendingCountKey)
	s.logger.Info("booking approved", "booking_id", id)
	return nil
}

// Reject marks the booking rejected. Also idempotent.
func (s *Service) Reject(ctx context.Context, id string) error {
	err := s.bookings.Update(ctx, id, map[string]any{
		"for_censorship": CensorshipRejected,
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return internal.ErrBookingNotFound
		}
		s.logger.Error("failed to reject booking", "booking_id", id, "error", err)
		return err
	}

	s.counts.Invalidate(ctx, pendingCountKey)
	s.logger.Info("booking rejected", "booking_id", id)
	return nil
}
