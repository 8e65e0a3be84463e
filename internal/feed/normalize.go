package feed

import "strings"

// Normalizers extract a uniform per-domain shape from the loosely-typed
// detail payload. Every extraction has a fallback chain and none of them can
// fail; missing strings resolve to "Unknown".

func newMeta(raw RawRecord) RecordMeta {
	status := strings.ToLower(strings.TrimSpace(raw.OrderStatus))
	if status == "" {
		status = StatusPending
	}
	at, ok := ParseTimestamp(raw.Timestamp)
	return RecordMeta{
		ID:          raw.ID,
		Timestamp:   raw.Timestamp,
		OrderStatus: status,
		IsRead:      raw.IsRead,
		at:          at,
		hasTime:     ok,
	}
}

// Pending reports whether the record should be surfaced. Completed and
// cancelled records are filtered out at normalization time.
func Pending(raw RawRecord) bool {
	status := strings.ToLower(strings.TrimSpace(raw.OrderStatus))
	return status == "" || status == StatusPending
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return UnknownValue
}

// NormalizeFood builds a food order. The total prefers an explicit total,
// then subtotal+tax, then item summation.
func NormalizeFood(raw RawRecord, d Details) FoodOrder {
	total := 0.0
	switch {
	case d.Total != nil:
		total = float64(*d.Total)
	case d.Subtotal != nil:
		total = float64(*d.Subtotal)
		if d.Tax != nil {
			total += float64(*d.Tax)
		}
	default:
		for _, item := range d.Items {
			qty := int(item.Qty)
			if qty == 0 {
				qty = 1
			}
			total += float64(qty) * float64(item.Price)
		}
	}
	return FoodOrder{
		RecordMeta: newMeta(raw),
		Items:      d.Items,
		Total:      total,
	}
}

// NormalizeReservation builds a reservation. Discrete date/time fields win;
// a combined date_time field is split on "T" when they are absent.
func NormalizeReservation(raw RawRecord, d Details) Reservation {
	bookingDate := strings.TrimSpace(d.Date.String())
	startTime := strings.TrimSpace(d.Time.String())
	if bookingDate == "" || startTime == "" {
		if combined := strings.TrimSpace(d.DateTime.String()); combined != "" {
			parts := strings.SplitN(combined, "T", 2)
			if bookingDate == "" {
				bookingDate = parts[0]
			}
			if startTime == "" && len(parts) == 2 {
				startTime = parts[1]
			}
		}
	}

	partySize := 0
	if d.PartySize != nil {
		partySize = int(*d.PartySize)
	}

	return Reservation{
		RecordMeta:   newMeta(raw),
		CustomerName: firstNonEmpty(d.CustomerName.String(), d.Name.String(), raw.CustomerName),
		BookingDate:  firstNonEmpty(bookingDate),
		StartTime:    firstNonEmpty(startTime),
		ContactInfo:  firstNonEmpty(d.ContactInfo.String(), raw.PhoneNumber),
		PartySize:    partySize,
	}
}

// NormalizeCallback builds a callback request. The callback number tries the
// detail payload's number, then callback_number, then the channel phone
// number the record arrived on.
func NormalizeCallback(raw RawRecord, d Details) Callback {
	return Callback{
		RecordMeta:     newMeta(raw),
		CustomerName:   firstNonEmpty(d.CustomerName.String(), d.Name.String(), raw.CustomerName),
		CallbackNumber: firstNonEmpty(d.Number.String(), d.CallbackNumber.String(), raw.PhoneNumber),
		RequestedAt:    strings.TrimSpace(d.RequestedAt.String()),
		ASAP:           bool(d.ASAP),
		Date:           strings.TrimSpace(d.Date.String()),
		Time:           strings.TrimSpace(d.Time.String()),
	}
}

// NormalizeFAQ builds an FAQ request.
func NormalizeFAQ(raw RawRecord, d Details) FAQ {
	return FAQ{
		RecordMeta:     newMeta(raw),
		CustomerName:   firstNonEmpty(d.CustomerName.String(), d.Name.String(), raw.CustomerName),
		CustomerNumber: firstNonEmpty(d.Number.String(), d.CallbackNumber.String(), raw.PhoneNumber),
		Question:       firstNonEmpty(d.Question.String()),
		Answer:         strings.TrimSpace(d.Answer.String()),
	}
}
