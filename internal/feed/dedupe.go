package feed

import (
	"strings"
	"time"
)

// DedupeWindow is how close two callbacks from the same number have to be to
// count as the same real-world request. Tuned for UI double-submissions and
// retried webhooks, not a general correctness guarantee.
const DedupeWindow = 30 * time.Minute

// PhoneKey reduces a callback number to its digits for duplicate grouping.
// Callers submit the same number both with and without a country code, so
// only the last ten digits count: "+1 (555) 111-2222" and "5551112222"
// group together. Numbers with no digits fall back to the raw value, then
// to "Unknown".
func PhoneKey(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	if digits != "" {
		return digits
	}
	if trimmed := strings.TrimSpace(number); trimmed != "" {
		return trimmed
	}
	return UnknownValue
}

// DedupeCallbacks collapses near-duplicate callback requests. Input must be
// sorted newest-first; because of that, the first record kept for a number
// is the most recent one and the older near-duplicates behind it are
// dropped.
//
// Only the first record kept per number ever serves as the comparison
// baseline: a later kept record never becomes the representative, even when
// it falls outside the window. That matches the long-standing dashboard
// behavior, which operators have tuned their workflows around, so it is kept
// as-is rather than "fixed".
func DedupeCallbacks(callbacks []Callback) []Callback {
	reps := make(map[string]Callback, len(callbacks))
	kept := make([]Callback, 0, len(callbacks))

	for _, cb := range callbacks {
		key := PhoneKey(cb.CallbackNumber)
		rep, seen := reps[key]
		if !seen {
			reps[key] = cb
			kept = append(kept, cb)
			continue
		}

		cbAt, cbOK := cb.When()
		repAt, repOK := rep.When()
		if cbOK && repOK {
			diff := cbAt.Sub(repAt)
			if diff < 0 {
				diff = -diff
			}
			if diff < DedupeWindow {
				continue
			}
			kept = append(kept, cb)
			continue
		}

		// Unparseable timestamps: fall back to exact string equality.
		if cb.Timestamp == rep.Timestamp {
			continue
		}
		kept = append(kept, cb)
	}

	SortNewestFirst(kept)
	return kept
}
