// Package transport holds the JSON command/event framing and the HTTP/gRPC
// ingestion surface around the matching core.
package transport

// CommandPayload is the wire shape of one `process` call, covering NEW,
// CANCEL, and REPLENISH; unused fields for a given type are left zero.
type CommandPayload struct {
	Type            string `json:"type" validate:"required,oneof=NEW CANCEL REPLENISH"`
	Time            int64  `json:"time"`
	OrderID         int64  `json:"order_id" validate:"required"`
	Symbol          string `json:"symbol"`
	Side            string `json:"side" validate:"omitempty,oneof=buy sell BUY SELL Buy Sell"`
	Quantity        int64  `json:"quantity"`
	DisplayQuantity int64  `json:"display_quantity"`
	HiddenQuantity  int64  `json:"hidden_quantity"`
	LimitPrice      string `json:"limit_price"`
	TIF             string `json:"tif" validate:"omitempty,oneof=day immediate_or_cancel good_till_cancel"`
}
