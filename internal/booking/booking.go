package booking

import (
	"time"

	"github.com/wedflix/command-center/internal/docstore"
)

// Collection is the raw booking collection written by the upstream
// reservation system; this service only reads it and flips the review
// fields.
const Collection = "booking"

// Censorship codes of the review lifecycle. A booking enters the queue
// at pending and leaves it permanently on the first decision; the
// record itself is never deleted.
const (
	CensorshipPending  = 0
	CensorshipApproved = 1
	CensorshipRejected = 2
)

type Booking struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"bookingId"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Content       string    `json:"content"`
	TotalCost     float64   `json:"total_cost"`
	Created       time.Time `json:"created"`
	ForCensorship int       `json:"for_censorship"`
	Status        string    `json:"status,omitempty"`
}

// Pending reports whether the booking is still awaiting review.
func (b Booking) Pending() bool {
	return b.ForCensorship == CensorshipPending
}

func fromDocument(d docstore.Document) Booking {
	bookingID := d.String("reservation_id")
	if bookingID == "" {
		bookingID = d.ID
	}
	return Booking{
		ID:            d.ID,
		BookingID:     bookingID,
		StartDate:     d.Time("start_date"),
		EndDate:       d.Time("end_date"),
		Content:       d.String("url"),
		TotalCost:     d.Float("total_cost"),
		Created:       d.Time("created"),
		ForCensorship: d.Int("for_censorship"),
		Status:        d.String("status"),
	}
}
