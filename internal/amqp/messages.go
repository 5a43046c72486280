package amqp

import (
	"encoding/json"
	"errors"
	"fmt"

	"gastos/internal/core"
)

var ErrMalformedMessage = errors.New("malformed ledger message")

var knownKinds = map[core.EventKind]bool{
	core.EventPersonCreated:      true,
	core.EventPersonUpdated:      true,
	core.EventPersonDeleted:      true,
	core.EventCategoryCreated:    true,
	core.EventTransactionCreated: true,
}

// EncodeLedgerEvent converts the event to the JSON message body.
func EncodeLedgerEvent(ev core.LedgerEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// DecodeLedgerEvent parses a message body. Unknown kinds and events without
// an id are rejected with ErrMalformedMessage.
func DecodeLedgerEvent(data []byte) (core.LedgerEvent, error) {
	var ev core.LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return core.LedgerEvent{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if ev.ID == "" {
		return core.LedgerEvent{}, fmt.Errorf("%w: missing id", ErrMalformedMessage)
	}
	if !knownKinds[ev.Kind] {
		return core.LedgerEvent{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedMessage, ev.Kind)
	}
	return ev, nil
}
