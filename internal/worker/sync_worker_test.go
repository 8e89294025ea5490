package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"financas/internal/amqp"
	"financas/internal/cache"
	"financas/internal/core"
	sheetsmem "financas/internal/sheets/memory"

	"github.com/shopspring/decimal"
)

func sampleTx(id string, amount int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		UserID:      "u1",
		Kind:        core.Expense,
		Date:        core.NewDate(2024, 6, 10),
		Description: "Mercado",
		CategoryID:  "c1",
		Category:    "Alimentação",
		Amount:      decimal.NewFromInt(amount),
		Method:      "PIX",
	}
}

type flakyMirror struct {
	failures int
	calls    int
}

func (m *flakyMirror) Upsert(context.Context, core.Transaction) error {
	m.calls++
	if m.calls <= m.failures {
		return errors.New("quota exceeded")
	}
	return nil
}

func (m *flakyMirror) Remove(context.Context, string) error { return nil }

// scriptedConsumer hands a fixed list of events to the handler, then waits
// for cancellation.
type scriptedConsumer struct {
	events []*amqp.TransactionEvent
	errs   []error
	done   chan struct{}
}

func (c *scriptedConsumer) ConsumeTransactionEvents(ctx context.Context, handler amqp.Handler) error {
	for _, ev := range c.events {
		c.errs = append(c.errs, handler(ctx, ev))
	}
	close(c.done)
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleTransactionEventMirrorsAndInvalidates(t *testing.T) {
	ctx := context.Background()
	views := cache.NewLocalViews(cache.NewLRUCache[[]byte](10, time.Hour))
	mirror := sheetsmem.New()
	w := NewSyncWorker(views, mirror)

	if err := views.Set(ctx, "u1", "dashboard", 0, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		name    string
		ev      *amqp.TransactionEvent
		wantRow bool
		amount  string
	}{
		{"created", amqp.NewTransactionEvent(amqp.ActionCreated, sampleTx("t1", 100)), true, "100.00"},
		{"updated", amqp.NewTransactionEvent(amqp.ActionUpdated, sampleTx("t1", 250)), true, "250.00"},
		{"deleted", amqp.NewTransactionEvent(amqp.ActionDeleted, sampleTx("t1", 250)), false, ""},
	}
	for _, st := range steps {
		t.Run(st.name, func(t *testing.T) {
			if err := w.HandleTransactionEvent(ctx, st.ev); err != nil {
				t.Fatalf("HandleTransactionEvent: %v", err)
			}
			row, ok := mirror.Row("t1")
			if ok != st.wantRow {
				t.Fatalf("row present = %v, want %v", ok, st.wantRow)
			}
			if ok && row[5] != st.amount {
				t.Errorf("valor = %v, want %s", row[5], st.amount)
			}
		})
	}

	if _, hit, _ := views.Get(ctx, "u1", "dashboard"); hit {
		t.Error("cached view survived the event")
	}
	if got := len(mirror.Rows()); got != 1 {
		t.Errorf("rows = %d, want 1 blanked row", got)
	}
	st := w.Stats()
	if st.Processed != 3 || st.Mirrored != 3 || st.Invalidated != 3 || st.Failed != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestHandleTransactionEventWithoutSinks(t *testing.T) {
	w := NewSyncWorker(nil, nil)
	if err := w.HandleTransactionEvent(context.Background(), amqp.NewTransactionEvent(amqp.ActionCreated, sampleTx("t1", 1))); err != nil {
		t.Fatal(err)
	}
	if st := w.Stats(); st.Processed != 1 || st.Mirrored != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestHandleTransactionEventReportsMirrorFailure(t *testing.T) {
	mirror := &flakyMirror{failures: 1}
	w := NewSyncWorker(nil, mirror)
	ev := amqp.NewTransactionEvent(amqp.ActionCreated, sampleTx("t1", 1))

	if err := w.HandleTransactionEvent(context.Background(), ev); err == nil {
		t.Fatal("expected error from failing mirror")
	}
	if err := w.HandleTransactionEvent(context.Background(), ev); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if st := w.Stats(); st.Failed != 1 || st.Processed != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	mirror := sheetsmem.New()
	w := NewSyncWorker(nil, mirror)
	consumer := &scriptedConsumer{
		events: []*amqp.TransactionEvent{
			amqp.NewTransactionEvent(amqp.ActionCreated, sampleTx("a", 1)),
			amqp.NewTransactionEvent(amqp.ActionCreated, sampleTx("b", 2)),
		},
		done: make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- w.Run(ctx, consumer, 10*time.Millisecond) }()

	<-consumer.done
	cancel()
	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	for _, err := range consumer.errs {
		if err != nil {
			t.Errorf("handler error: %v", err)
		}
	}
	if len(mirror.Rows()) != 2 {
		t.Errorf("rows = %d, want 2", len(mirror.Rows()))
	}
}

type brokenConsumer struct{}

func (brokenConsumer) ConsumeTransactionEvents(context.Context, amqp.Handler) error {
	return errors.New("access refused")
}

func TestRunReturnsConsumerError(t *testing.T) {
	w := NewSyncWorker(nil, nil)
	if err := w.Run(context.Background(), brokenConsumer{}, time.Hour); err == nil {
		t.Fatal("expected consumer error")
	}
}
