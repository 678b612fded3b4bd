package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
	// OpCleared signals that every transaction for the user was removed.
	OpCleared = "cleared"
)

// LedgerEvent is the lightweight message published for every transaction
// mutation. The worker refetches whatever state it needs, so the payload
// carries identifiers only.
type LedgerEvent struct {
	Op            string    `json:"op"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id,omitempty"` // empty for OpCleared
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerEvent(op, userID, transactionID string) *LedgerEvent {
	return &LedgerEvent{
		Op:            op,
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

func (e *LedgerEvent) Validate() error {
	switch e.Op {
	case OpCreated, OpUpdated, OpDeleted:
		if e.TransactionID == "" {
			return errors.New("missing transaction id")
		}
	case OpCleared:
	default:
		return errors.New("unknown op: " + e.Op)
	}
	if e.UserID == "" {
		return errors.New("missing user id")
	}
	return nil
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
