package booking

import "time"

// BookingDTO is the review-queue row shape.
type BookingDTO struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"bookingId"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	Content       string    `json:"content,omitempty"`
	Created       time.Time `json:"created"`
	ForCensorship int       `json:"forCensorship"`
	TotalCost     float64   `json:"totalCost"`
}

// PendingPageDTO wraps one page of the pending queue with the cached
// queue size.
type PendingPageDTO struct {
	Bookings   []BookingDTO `json:"bookings"`
	TotalCount int          `json:"totalCount"`
	PageNumber int          `json:"pageNumber"`
	PageSize   int          `json:"pageSize"`
}

// ConfirmDTO is the body both review actions require; the action is
// refused unless the caller explicitly confirms.
type ConfirmDTO struct {
	Confirm bool `json:"confirm"`
}

func toDTO(b Booking) BookingDTO {
	return BookingDTO{
		ID:            b.ID,
		BookingID:     b.BookingID,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		Content:       b.Content,
		Created:       b.Created,
		ForCensorship: b.ForCensorship,
		TotalCost:     b.TotalCost,
	}
}

func toDTOs(bookings []Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toDTO(b))
	}
	return out
}
