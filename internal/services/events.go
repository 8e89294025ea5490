package services

import (
	"context"

	"financas/internal/amqp"
)

// EventPublisher announces committed ledger writes. *amqp.Client
// implements it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

var _ EventPublisher = (*amqp.Client)(nil)
