package feed

import "strings"

// Rule is one classification predicate. Rules are evaluated in order and the
// first match wins, so precedence lives in the slice, not in nested
// conditionals.
type Rule struct {
	Name   string
	Domain Domain
	Match  func(d Details) bool
}

// Rules is the priority-ordered rule list. Explicit callback/faq types take
// priority over the reservation heuristics: a record with a party_size but
// type "callback" stays a callback.
var Rules = []Rule{
	{
		Name:   "explicit-callback-type",
		Domain: DomainCallback,
		Match: func(d Details) bool {
			t := normalizeType(d.Type)
			return t == "callback" || t == "callback_request"
		},
	},
	{
		Name:   "explicit-faq-type",
		Domain: DomainFAQ,
		Match: func(d Details) bool {
			t := normalizeType(d.Type)
			return t == "faq" || t == "faq_request"
		},
	},
	{
		Name:   "reservation-type-or-shape",
		Domain: DomainReservation,
		Match: func(d Details) bool {
			t := normalizeType(d.Type)
			if t == "reservation" {
				return true
			}
			if d.PartySize != nil {
				return true
			}
			// A bare date with no explicit type reads as a reservation.
			return d.Date != "" && t == ""
		},
	},
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// Classify assigns a raw record to exactly one domain. It never fails: a
// malformed order_details payload is reported through err but the record
// still lands in the food domain with empty details, so one bad record can
// never abort a batch.
func Classify(raw RawRecord) (Domain, Details, error) {
	d, err := DecodeDetails(raw.OrderDetails)
	if err != nil {
		return DomainFood, Details{}, err
	}
	for _, rule := range Rules {
		if rule.Match(d) {
			return rule.Domain, d, nil
		}
	}
	return DomainFood, d, nil
}
