package feed

import (
	"testing"
	"time"
)

func cbAt(id, number, ts string) Callback {
	at, ok := ParseTimestamp(ts)
	return Callback{
		RecordMeta: RecordMeta{
			ID:        id,
			Timestamp: ts,
			at:        at,
			hasTime:   ok,
		},
		CallbackNumber: number,
	}
}

func TestPhoneKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+1 (555) 123-4567", "5551234567"},
		{"555.123.4567", "5551234567"},
		{"1-555-123-4567", "5551234567"},
		{"+44 20 7946 0958", "2079460958"},
		{"no digits here", "no digits here"},
		{"  ", UnknownValue},
		{"", UnknownValue},
	}
	for _, tc := range cases {
		if got := PhoneKey(tc.in); got != tc.want {
			t.Fatalf("PhoneKey(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestDedupeCallbacks_WithinWindowCollapses(t *testing.T) {
	input := []Callback{
		cbAt("b", "+1 (555) 123-4567", "2026-08-28T10:29:00Z"),
		cbAt("a", "555-123-4567", "2026-08-28T10:00:00Z"),
	}
	kept := DedupeCallbacks(input)
	if len(kept) != 1 {
		t.Fatalf("expected 1 kept, got %d", len(kept))
	}
	// Input is newest-first, so the newer record is the one that survives
	// despite the different formatting of the same number.
	if kept[0].ID != "b" {
		t.Fatalf("expected newer record b, got %s", kept[0].ID)
	}
}

// The same number with and without the leading country code is one caller.
func TestDedupeCallbacks_CountryCodeFormsCollapse(t *testing.T) {
	input := []Callback{
		cbAt("b", "+1 (555) 111-2222", "2026-08-28T10:20:00Z"),
		cbAt("a", "5551112222", "2026-08-28T10:00:00Z"),
	}
	kept := DedupeCallbacks(input)
	if len(kept) != 1 {
		t.Fatalf("expected 1 kept, got %d", len(kept))
	}
	if kept[0].ID != "b" {
		t.Fatalf("expected newer record b, got %s", kept[0].ID)
	}
}

func TestDedupeCallbacks_OutsideWindowBothSurvive(t *testing.T) {
	input := []Callback{
		cbAt("b", "5551234567", "2026-08-28T10:31:00Z"),
		cbAt("a", "5551234567", "2026-08-28T10:00:00Z"),
	}
	kept := DedupeCallbacks(input)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	if kept[0].ID != "b" || kept[1].ID != "a" {
		t.Fatalf("expected newest-first order b,a got %s,%s", kept[0].ID, kept[1].ID)
	}
}

func TestDedupeCallbacks_DifferentNumbersNeverCollapse(t *testing.T) {
	input := []Callback{
		cbAt("b", "5551234567", "2026-08-28T10:01:00Z"),
		cbAt("a", "5559876543", "2026-08-28T10:00:00Z"),
	}
	if kept := DedupeCallbacks(input); len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
}

// The first record kept per number stays the comparison baseline for the
// whole pass. A record outside the window survives, but it does not become
// the new baseline for records after it.
func TestDedupeCallbacks_RepresentativeNeverAdvances(t *testing.T) {
	input := []Callback{
		cbAt("c", "5551234567", "2026-08-28T11:10:00Z"),
		cbAt("b", "5551234567", "2026-08-28T10:45:00Z"),
		cbAt("a", "5551234567", "2026-08-28T10:30:00Z"),
	}
	kept := DedupeCallbacks(input)
	// c is the baseline; b is within 30m of c and drops; a is 40m from c
	// and survives even though it is only 15m from b.
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	if kept[0].ID != "c" || kept[1].ID != "a" {
		t.Fatalf("expected c,a got %s,%s", kept[0].ID, kept[1].ID)
	}
}

func TestDedupeCallbacks_UnparseableTimestamps(t *testing.T) {
	input := []Callback{
		cbAt("a", "5551234567", "not a time"),
		cbAt("b", "5551234567", "not a time"),
		cbAt("c", "5551234567", "also not a time"),
	}
	kept := DedupeCallbacks(input)
	// Exact string equality is the only signal without timestamps: b drops
	// against a, c survives.
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
}

func TestDedupeCallbacks_Idempotent(t *testing.T) {
	input := []Callback{
		cbAt("c", "5551234567", "2026-08-28T11:10:00Z"),
		cbAt("b", "5551234567", "2026-08-28T10:45:00Z"),
		cbAt("a", "5559876543", "2026-08-28T10:00:00Z"),
	}
	once := DedupeCallbacks(input)
	twice := DedupeCallbacks(once)
	if len(once) != len(twice) {
		t.Fatalf("expected idempotent dedupe, got %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("order changed on second pass at %d: %s vs %s", i, once[i].ID, twice[i].ID)
		}
	}
}

func TestDedupeCallbacks_Empty(t *testing.T) {
	if kept := DedupeCallbacks(nil); len(kept) != 0 {
		t.Fatalf("expected empty, got %d", len(kept))
	}
}

func TestDedupeWindowBoundary(t *testing.T) {
	base := "2026-08-28T10:00:00Z"
	exactly := "2026-08-28T10:30:00Z"
	input := []Callback{
		cbAt("b", "5551234567", exactly),
		cbAt("a", "5551234567", base),
	}
	kept := DedupeCallbacks(input)
	// A gap of exactly 30 minutes is not "less than" the window.
	if len(kept) != 2 {
		t.Fatalf("expected boundary records to both survive, got %d", len(kept))
	}
	if DedupeWindow != 30*time.Minute {
		t.Fatalf("unexpected window: %v", DedupeWindow)
	}
}
