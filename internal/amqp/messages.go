package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"financas/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Action names the ledger change carried by a TransactionEvent.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// TransactionEvent announces a committed ledger write. It carries a full
// snapshot of the transaction so consumers never read the database; for
// deletes the snapshot is the row as it was before removal.
type TransactionEvent struct {
	ID          string          `json:"id"`
	Action      Action          `json:"action"`
	UserID      string          `json:"user_id"`
	Transaction TransactionData `json:"transaction"`
	Timestamp   time.Time       `json:"timestamp"`
}

// TransactionData is the wire form of core.Transaction.
type TransactionData struct {
	ID          string          `json:"id"`
	Kind        core.Kind       `json:"tipo"`
	Date        core.Date       `json:"data"`
	Description string          `json:"descricao"`
	CategoryID  string          `json:"categoria_id"`
	Category    string          `json:"categoria"`
	Amount      decimal.Decimal `json:"valor"`
	Method      string          `json:"forma"`
}

// NewTransactionEvent builds an event for tx with a fresh id.
func NewTransactionEvent(action Action, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		ID:     uuid.NewString(),
		Action: action,
		UserID: tx.UserID,
		Transaction: TransactionData{
			ID:          tx.ID,
			Kind:        tx.Kind,
			Date:        tx.Date,
			Description: tx.Description,
			CategoryID:  tx.CategoryID,
			Category:    tx.Category,
			Amount:      tx.Amount,
			Method:      tx.Method,
		},
		Timestamp: time.Now().UTC(),
	}
}

// Core returns the transaction snapshot as a domain value.
func (e *TransactionEvent) Core() core.Transaction {
	d := e.Transaction
	return core.Transaction{
		ID:          d.ID,
		UserID:      e.UserID,
		Kind:        d.Kind,
		Date:        d.Date,
		Description: d.Description,
		CategoryID:  d.CategoryID,
		Category:    d.Category,
		Amount:      d.Amount,
		Method:      d.Method,
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and sanity-checks an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return nil, fmt.Errorf("unknown action %q", ev.Action)
	}
	if ev.UserID == "" || ev.Transaction.ID == "" {
		return nil, fmt.Errorf("event %s is missing user or transaction id", ev.ID)
	}
	return &ev, nil
}
