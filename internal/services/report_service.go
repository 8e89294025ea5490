package services

import (
	"context"
	"encoding/json"
	"fmt"

	"financas/internal/analytics"
	"financas/internal/auth"
	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/storage"
)

// Cached view names.
const (
	ViewDashboard  = "dashboard"
	ViewRecurring  = "recorrentes"
	ViewMonthly    = "resumo"
	ViewProjection = "projecoes"
)

// MonthlyReport is the resumo-mensal payload.
type MonthlyReport struct {
	Months []analytics.MonthlySummary `json:"meses"`
	Stats  analytics.MonthlyStats     `json:"estatisticas"`
}

// ReportService runs the analytics engine over a user's ledger and caches
// the rendered views.
type ReportService struct {
	txs    storage.TransactionStore
	engine *analytics.Engine
	views  cache.ViewCache
	logger *log.Logger
}

// NewReportService wires the service. A nil views disables caching.
func NewReportService(txs storage.TransactionStore, engine *analytics.Engine, views cache.ViewCache) *ReportService {
	return &ReportService{
		txs:    txs,
		engine: engine,
		views:  views,
		logger: log.ForComponent(log.ComponentReports),
	}
}

func (s *ReportService) Dashboard(ctx context.Context, sess auth.Session, p analytics.Period) (analytics.DashboardSnapshot, error) {
	key := fmt.Sprintf("%s:%s:%s:%s", ViewDashboard, p.Kind, dateKey(p.Start), dateKey(p.End))
	return cached(ctx, s, sess.UserID, key, func(txs []core.Transaction) analytics.DashboardSnapshot {
		return s.engine.Dashboard(txs, p)
	})
}

func (s *ReportService) Recurring(ctx context.Context, sess auth.Session) (analytics.RecurrenceReport, error) {
	return cached(ctx, s, sess.UserID, ViewRecurring, s.engine.Recurring)
}

func (s *ReportService) Monthly(ctx context.Context, sess auth.Session) (MonthlyReport, error) {
	return cached(ctx, s, sess.UserID, ViewMonthly, func(txs []core.Transaction) MonthlyReport {
		months := s.engine.Monthly(txs)
		return MonthlyReport{Months: months, Stats: analytics.SummarizeMonths(months)}
	})
}

func (s *ReportService) Projection(ctx context.Context, sess auth.Session) (analytics.Projection, error) {
	return cached(ctx, s, sess.UserID, ViewProjection, s.engine.Projection)
}

// cached serves view key from the cache or computes it from the user's full
// ledger. Keys carry the engine's reference month so views that depend on
// "now" roll over at month boundaries. Cache failures degrade to a
// recompute. The cache version is read before the ledger so a write that
// commits during the computation keeps the result out of the cache.
func cached[T any](ctx context.Context, s *ReportService, userID, key string, compute func([]core.Transaction) T) (T, error) {
	var zero T
	key = key + "@" + analytics.MonthOf(s.engine.Now()).String()

	var version int64
	storable := s.views != nil
	if s.views != nil {
		var err error
		if version, err = s.views.Version(ctx, userID); err != nil {
			s.logger.WarnContext(ctx, "View cache version read failed", log.NewFields().WithUser(userID).WithError(err).ToSlice()...)
			storable = false
		}
		b, ok, err := s.views.Get(ctx, userID, key)
		if err != nil {
			s.logger.WarnContext(ctx, "View cache read failed", log.NewFields().WithUser(userID).WithError(err).ToSlice()...)
		}
		if ok {
			var v T
			if err := json.Unmarshal(b, &v); err == nil {
				s.logger.DebugContext(ctx, "View served", log.NewFields().WithUser(userID).WithView(key, true).ToSlice()...)
				return v, nil
			}
		}
	}

	txs, err := s.txs.ListTransactions(ctx, userID, storage.TransactionFilter{})
	if err != nil {
		return zero, fmt.Errorf("load transactions: %w", err)
	}
	v := compute(txs)
	s.logger.DebugContext(ctx, "View computed", log.NewFields().WithUser(userID).WithView(key, false).ToSlice()...)

	if storable {
		if b, err := json.Marshal(v); err == nil {
			if err := s.views.Set(ctx, userID, key, version, b); err != nil {
				s.logger.WarnContext(ctx, "View cache write failed", log.NewFields().WithUser(userID).WithError(err).ToSlice()...)
			}
		}
	}
	return v, nil
}

func dateKey(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
