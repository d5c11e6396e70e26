package booking_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wedflix/command-center/internal/booking"
	"github.com/wedflix/command-center/internal/cache"
	"github.com/wedflix/command-center/internal/docstore"
)

var _ = Describe("BookingHandler", func() {
	var (
		store  *docstore.MemStore
		router *chi.Mux
	)

	BeforeEach(func() {
		store = docstore.NewMemStore()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := booking.NewService(store, cache.New(nil, 0, logger), logger)
		handler := booking.NewHandler(service, logger)

		router = chi.NewRouter()
		router.Get("/bookings/pending", handler.ListPending)
		router.Patch("/bookings/{id}/approve", handler.Approve)
		router.Patch("/bookings/{id}/reject", handler.Reject)

		Expect(store.Collection(booking.Collection).Set(context.Background(), "b1", map[string]any{
			"reservation_id": "res-b1",
			"created":        time.Now(),
			"for_censorship": booking.CensorshipPending,
			"for_screening":  1,
		})).To(Succeed())
	})

	Describe("review actions", func() {
		It("should refuse an approve without a confirmation body", func() {
			req := httptest.NewRequest(http.MethodPatch, "/bookings/b1/approve", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("CONFIRM_REQUIRED"))

			doc, err := store.Collection(booking.Collection).Get(context.Background(), "b1")
			Expect(err).ToNot(HaveOccurred())
			Expect(doc.Int("for_censorship")).To(Equal(booking.CensorshipPending))
		})

		It("should refuse an approve with confirm set to false", func() {
			req := httptest.NewRequest(http.MethodPatch, "/bookings/b1/approve", strings.NewReader(`{"confirm": false}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should approve with an explicit confirmation", func() {
			req := httptest.NewRequest(http.MethodPatch, "/bookings/b1/approve", strings.NewReader(`{"confirm": true}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var body booking.BookingDTO
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.ForCensorship).To(Equal(booking.CensorshipApproved))
		})

		It("should reject with an explicit confirmation", func() {
			req := httptest.NewRequest(http.MethodPatch, "/bookings/b1/reject", strings.NewReader(`{"confirm": true}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			doc, err := store.Collection(booking.Collection).Get(context.Background(), "b1")
			Expect(err).ToNot(HaveOccurred())
			Expect(doc.Int("for_censorship")).To(Equal(booking.CensorshipRejected))
		})

		It("should return 404 for an unknown booking", func() {
			req := httptest.NewRequest(http.MethodPatch, "/bookings/ghost/approve", strings.NewReader(`{"confirm": true}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("ListPending", func() {
		It("should return the pending page with the total", func() {
			req := httptest.NewRequest(http.MethodGet, "/bookings/pending?page=1&pageSize=5", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var body booking.PendingPageDTO
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.TotalCount).To(Equal(1))
			Expect(body.Bookings).To(HaveLen(1))
			Expect(body.Bookings[0].BookingID).To(Equal("res-b1"))
		})
	})
})
