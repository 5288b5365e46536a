package insights

import (
	"context"
	"fmt"
	"time"

	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TransactionSource is the subset of store.TransactionStore the engine reads.
type TransactionSource interface {
	ListTransactionsForUser(ctx context.Context, userId string, window *store.DateRange) ([]models.Transaction, error)
}

// AccountSource is the subset of store.AccountStore the engine reads.
type AccountSource interface {
	ListAccountsForUser(ctx context.Context, userId string) ([]models.Account, error)
}

// Engine computes spend insights for one user and period per call. It keeps
// no state between calls.
type Engine struct {
	transactions TransactionSource
	accounts     AccountSource
	now          func() time.Time
	tracer       trace.Tracer
}

type Option func(*Engine)

// WithClock overrides the source of "today" and the response timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

func NewEngine(transactions TransactionSource, accounts AccountSource, opts ...Option) *Engine {
	e := &Engine{
		transactions: transactions,
		accounts:     accounts,
		now:          func() time.Time { return time.Now().UTC() },
		tracer:       otel.Tracer("spendsense-go/insights"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report is the unrounded result of one insights computation.
type Report struct {
	UserId        string
	Window        Window
	Summary       SpendSummary
	Utilization   []UtilizationPoint
	Subscriptions SubscriptionSummary
	GeneratedAt   time.Time
}

// Compute validates the period before touching the stores, fetches the user's
// transactions and accounts, and runs the three analyzers.
func (e *Engine) Compute(ctx context.Context, userId, period string) (*Report, error) {
	ctx, span := e.tracer.Start(ctx, "insights.Compute",
		trace.WithAttributes(
			attribute.String("user_id", userId),
			attribute.String("period", period),
		))
	defer span.End()

	generatedAt := e.now()
	window, err := ResolveWindow(period, generatedAt)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var transactions []models.Transaction
	var accounts []models.Account

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = e.transactions.ListTransactionsForUser(gctx, userId, window.DateRange())
		if err != nil {
			return fmt.Errorf("%w: transactions: %w", ErrDataFetch, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		accounts, err = e.accounts.ListAccountsForUser(gctx, userId)
		if err != nil {
			return fmt.Errorf("%w: accounts: %w", ErrDataFetch, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("Failed to fetch insights data",
			zap.String("user_id", userId),
			zap.String("period", period),
			zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "data fetch failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("transactions", len(transactions)),
		attribute.Int("accounts", len(accounts)),
	)

	report := &Report{
		UserId:        userId,
		Window:        window,
		Summary:       Summarize(transactions, window),
		Utilization:   TrackUtilization(accounts, window),
		Subscriptions: DetectSubscriptions(transactions, window),
		GeneratedAt:   generatedAt,
	}

	zap.L().Debug("Insights computed",
		zap.String("user_id", userId),
		zap.String("period", period),
		zap.Int("transactions", len(transactions)),
		zap.Int("utilization_points", len(report.Utilization)),
		zap.Int("subscriptions", len(report.Subscriptions.Subscriptions)))

	return report, nil
}

// GetInsights computes the report and shapes it into the response payload.
func (e *Engine) GetInsights(ctx context.Context, userId, period string) (*models.InsightsResponse, error) {
	report, err := e.Compute(ctx, userId, period)
	if err != nil {
		return nil, err
	}
	return report.Response(), nil
}
