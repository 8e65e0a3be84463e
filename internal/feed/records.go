// Package feed implements the live operations feed pipeline: raw order-like
// records pulled from the remote feed are classified into one of four domains
// (food orders, reservations, callback requests, FAQs), normalized into
// uniform shapes, deduplicated, and sorted for paginated display.
package feed

import (
	"encoding/json"
	"strings"
	"time"
)

// Domain identifies which of the four mutually-exclusive record categories
// a feed record belongs to.
type Domain string

const (
	DomainFood        Domain = "food"
	DomainReservation Domain = "reservations"
	DomainCallback    Domain = "callbacks"
	DomainFAQ         Domain = "faqs"
)

// Order status constants. The feed sends free-form strings; anything empty
// is treated as pending.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Default page sizes for the two display surfaces.
const (
	CardPageSize   = 3
	DetailPageSize = 5
)

// UnknownValue stands in for string fields the feed did not provide.
const UnknownValue = "Unknown"

// RawRecord is a feed record exactly as received. OrderDetails may be a JSON
// object or a JSON-encoded string containing an object (the feed
// double-encodes some records); it is resolved once by DecodeDetails.
type RawRecord struct {
	ID           string          `json:"id"`
	Timestamp    string          `json:"timestamp"`
	PhoneNumber  string          `json:"phone_number"`
	CustomerName string          `json:"customer_name"`
	OrderStatus  string          `json:"order_status"`
	OrderDetails json.RawMessage `json:"order_details"`
	IsRead       bool            `json:"is_read"`
}

// RecordMeta carries the fields shared by every normalized record.
type RecordMeta struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	OrderStatus string `json:"order_status"`
	IsRead      bool   `json:"is_read"`

	at      time.Time
	hasTime bool
}

// When returns the parsed record timestamp. ok is false when the feed sent
// something unparseable; such records sort last.
func (m RecordMeta) When() (time.Time, bool) {
	return m.at, m.hasTime
}

// LineItem is a single item on a food order.
type LineItem struct {
	Name  string    `json:"name"`
	Qty   FlexInt   `json:"qty"`
	Price FlexFloat `json:"price"`
}

// FoodOrder is a normalized food order.
type FoodOrder struct {
	RecordMeta
	Items []LineItem `json:"items"`
	Total float64    `json:"total"`
}

// Reservation is a normalized table reservation.
type Reservation struct {
	RecordMeta
	CustomerName string `json:"customer_name"`
	BookingDate  string `json:"booking_date"`
	StartTime    string `json:"start_time"`
	ContactInfo  string `json:"contact_info"`
	PartySize    int    `json:"party_size"`
}

// Callback is a normalized callback request.
type Callback struct {
	RecordMeta
	CustomerName   string `json:"customer_name"`
	CallbackNumber string `json:"callback_number"`
	RequestedAt    string `json:"requested_at"`
	ASAP           bool   `json:"asap"`
	Date           string `json:"date"`
	Time           string `json:"time"`
}

// FAQ is a normalized FAQ request.
type FAQ struct {
	RecordMeta
	CustomerName   string `json:"customer_name"`
	CustomerNumber string `json:"customer_number"`
	Question       string `json:"question"`
	Answer         string `json:"answer"`
}

// Snapshot is one fully-built aggregation of a business's live feed. The
// poller replaces snapshots wholesale, so readers always observe an
// internally consistent view.
type Snapshot struct {
	BusinessNumber string        `json:"business_number"`
	FetchedAt      time.Time     `json:"fetched_at"`
	Food           []FoodOrder   `json:"food"`
	Reservations   []Reservation `json:"reservations"`
	Callbacks      []Callback    `json:"callbacks"`
	FAQs           []FAQ         `json:"faqs"`
}

// Totals returns the per-domain record counts.
func (s *Snapshot) Totals() map[Domain]int {
	return map[Domain]int{
		DomainFood:        len(s.Food),
		DomainReservation: len(s.Reservations),
		DomainCallback:    len(s.Callbacks),
		DomainFAQ:         len(s.FAQs),
	}
}

// timestampLayouts covers the feed's inconsistent datetime formatting:
// proper RFC3339, fractional seconds, and bare naive datetimes that are
// UTC in practice but carry no suffix.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a feed timestamp. ok is false on failure; callers
// treat unparseable timestamps as unknown/oldest, never as errors.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// Some records carry both an offset and a stray trailing Z.
	if strings.HasSuffix(s, "Z") && (strings.Contains(s, "+") || strings.Count(s, "Z") > 1) {
		s = strings.TrimSuffix(s, "Z")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
