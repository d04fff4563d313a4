package engine

import "fmt"

// Kind tags the taxonomy of §7: most are silently-dropped outcomes, never
// surfaced to the caller as a Go error the matching loop must branch on.
type Kind string

const (
	KindMalformedPayload Kind = "MALFORMED_PAYLOAD"
	KindInvalidPrice     Kind = "INVALID_PRICE"
	KindInvalidSymbol    Kind = "INVALID_SYMBOL"
	KindInvalidLot       Kind = "INVALID_LOT"
	KindNoRuleForPrice   Kind = "NO_RULE_FOR_PRICE"
	KindDuplicateOrderID Kind = "DUPLICATE_ORDER_ID"
)

// RejectionError is logged and the command dropped; it is never returned
// to transport callers as a failure they must retry.
type RejectionError struct {
	Kind   Kind
	Detail string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}
