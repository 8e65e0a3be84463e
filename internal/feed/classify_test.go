package feed

import (
	"encoding/json"
	"testing"
)

func rawWithDetails(t *testing.T, details string) RawRecord {
	t.Helper()
	return RawRecord{
		ID:           "rec-1",
		Timestamp:    "2026-08-28T10:00:00Z",
		PhoneNumber:  "+15550001111",
		CustomerName: "Dana",
		OrderStatus:  "pending",
		OrderDetails: json.RawMessage(details),
	}
}

func TestClassify_ExplicitCallbackType(t *testing.T) {
	domain, _, err := Classify(rawWithDetails(t, `{"type":"callback","number":"+15559990000"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != DomainCallback {
		t.Fatalf("expected callbacks, got %s", domain)
	}
}

func TestClassify_CallbackRequestAlias(t *testing.T) {
	domain, _, _ := Classify(rawWithDetails(t, `{"type":"Callback_Request"}`))
	if domain != DomainCallback {
		t.Fatalf("expected callbacks, got %s", domain)
	}
}

func TestClassify_ExplicitFAQType(t *testing.T) {
	domain, _, _ := Classify(rawWithDetails(t, `{"type":"faq","question":"Do you deliver?"}`))
	if domain != DomainFAQ {
		t.Fatalf("expected faqs, got %s", domain)
	}
}

func TestClassify_ReservationByType(t *testing.T) {
	domain, _, _ := Classify(rawWithDetails(t, `{"type":"reservation","date":"2026-09-01"}`))
	if domain != DomainReservation {
		t.Fatalf("expected reservations, got %s", domain)
	}
}

func TestClassify_ReservationByPartySize(t *testing.T) {
	domain, _, _ := Classify(rawWithDetails(t, `{"party_size":4}`))
	if domain != DomainReservation {
		t.Fatalf("expected reservations, got %s", domain)
	}
}

func TestClassify_ReservationByDateWithoutType(t *testing.T) {
	domain, _, _ := Classify(rawWithDetails(t, `{"date":"2026-09-01"}`))
	if domain != DomainReservation {
		t.Fatalf("expected reservations, got %s", domain)
	}
}

// An explicit callback type wins even when the payload also carries
// reservation-shaped fields.
func TestClassify_ExplicitTypeBeatsReservationShape(t *testing.T) {
	domain, _, _ := Classify(rawWithDetails(t, `{"type":"callback","party_size":2,"date":"2026-09-01"}`))
	if domain != DomainCallback {
		t.Fatalf("expected callbacks, got %s", domain)
	}

	domain, _, _ = Classify(rawWithDetails(t, `{"type":"faq","date":"2026-09-01"}`))
	if domain != DomainFAQ {
		t.Fatalf("expected faqs, got %s", domain)
	}
}

// A date alongside an unrelated explicit type does not trip the
// reservation heuristic.
func TestClassify_DateWithOtherTypeStaysFood(t *testing.T) {
	domain, _, _ := Classify(rawWithDetails(t, `{"type":"order","date":"2026-09-01"}`))
	if domain != DomainFood {
		t.Fatalf("expected food, got %s", domain)
	}
}

func TestClassify_DefaultsToFood(t *testing.T) {
	for _, details := range []string{
		`{"items":[{"name":"Burger","qty":1,"price":9.5}]}`,
		`{}`,
		`null`,
		``,
	} {
		raw := rawWithDetails(t, details)
		domain, _, err := Classify(raw)
		if err != nil {
			t.Fatalf("details %q: unexpected error: %v", details, err)
		}
		if domain != DomainFood {
			t.Fatalf("details %q: expected food, got %s", details, domain)
		}
	}
}

// Malformed details report an error but still classify as food, so one bad
// record cannot abort a batch.
func TestClassify_MalformedDetailsStillFood(t *testing.T) {
	domain, details, err := Classify(rawWithDetails(t, `{"type": not json`))
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if domain != DomainFood {
		t.Fatalf("expected food, got %s", domain)
	}
	if details.Type != "" || len(details.Items) != 0 {
		t.Fatalf("expected zero details, got %+v", details)
	}
}

func TestClassify_DoubleEncodedDetails(t *testing.T) {
	domain, details, err := Classify(rawWithDetails(t, `"{\"type\":\"callback\",\"asap\":true}"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != DomainCallback {
		t.Fatalf("expected callbacks, got %s", domain)
	}
	if !bool(details.ASAP) {
		t.Fatal("expected asap to survive the embedded decode")
	}
}
