package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Details is the decoded order_details payload. Field presence matters for
// classification, so presence-sensitive fields are pointers.
type Details struct {
	Type           string     `json:"type"`
	Items          []LineItem `json:"items"`
	PartySize      *FlexInt   `json:"party_size"`
	Date           FlexString `json:"date"`
	Time           FlexString `json:"time"`
	DateTime       FlexString `json:"date_time"`
	Question       FlexString `json:"question"`
	Answer         FlexString `json:"answer"`
	Number         FlexString `json:"number"`
	CallbackNumber FlexString `json:"callback_number"`
	ASAP           FlexBool   `json:"asap"`
	RequestedAt    FlexString `json:"requested_at"`
	CustomerName   FlexString `json:"customer_name"`
	Name           FlexString `json:"name"`
	ContactInfo    FlexString `json:"contact_info"`
	Subtotal       *FlexFloat `json:"subtotal"`
	Tax            *FlexFloat `json:"tax"`
	Total          *FlexFloat `json:"total"`
}

// DecodeDetails resolves the order_details payload once at ingestion. The
// feed sends either a JSON object or a JSON string containing an encoded
// object; both forms decode to the same Details. A missing or null payload
// decodes to the zero Details. Malformed payloads return an error so the
// caller can log and fall back to the food domain.
func DecodeDetails(raw json.RawMessage) (Details, error) {
	var d Details

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return d, nil
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return Details{}, fmt.Errorf("decode order_details string: %w", err)
		}
		inner = string(bytes.TrimSpace([]byte(inner)))
		if inner == "" || inner == "null" {
			return d, nil
		}
		if err := json.Unmarshal([]byte(inner), &d); err != nil {
			return Details{}, fmt.Errorf("decode embedded order_details: %w", err)
		}
		return d, nil
	}

	if err := json.Unmarshal(trimmed, &d); err != nil {
		return Details{}, fmt.Errorf("decode order_details: %w", err)
	}
	return d, nil
}
