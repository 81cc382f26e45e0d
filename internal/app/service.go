package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"traderBot/internal/domain"
	"traderBot/internal/monitoring"
	"traderBot/internal/ports"
)

// SignalGenerator produces the combined signal for a symbol.
type SignalGenerator interface {
	GenerateCombinedSignal(ctx context.Context, symbol string) (domain.Signal, error)
}

// RiskGate is the part of the risk manager the trading loop drives.
type RiskGate interface {
	TradingStatus() (bool, string)
	UpdateDailyPnL(ctx context.Context, profit float64) error
	Flush(ctx context.Context) error
	CalculatePositionPlan(ctx context.Context, symbol string, side domain.OrderSide, entry float64) (*domain.PositionPlan, error)
	ValidateTrade(ctx context.Context, plan *domain.PositionPlan) error
	Close(ctx context.Context) error
}

// Outcome describes how one iteration ended.
type Outcome string

const (
	OutcomeHalted   Outcome = "halted"
	OutcomeNoSignal Outcome = "no_signal"
	OutcomeRejected Outcome = "rejected"
	OutcomeDryRun   Outcome = "dry_run"
	OutcomeExecuted Outcome = "executed"
)

// Options wires a TradingService. Orders may be nil only in dry-run mode.
// PnLFeed and TradeLog are optional.
type Options struct {
	Symbol       string
	PollInterval time.Duration
	DryRun       bool

	Signals  SignalGenerator
	Risk     RiskGate
	Market   ports.MarketData
	Account  ports.Account
	Orders   ports.OrderExecutor
	PnLFeed  ports.RealizedPnLFeed
	TradeLog ports.TradeLog
	Logger   ports.Logger
	Metrics  *monitoring.Metrics
	Now      func() time.Time
}

// TradingService runs the poll, decide, size and execute loop for one symbol.
type TradingService struct {
	symbol       string
	pollInterval time.Duration
	dryRun       bool

	signals  SignalGenerator
	risk     RiskGate
	market   ports.MarketData
	account  ports.Account
	orders   ports.OrderExecutor
	pnlFeed  ports.RealizedPnLFeed
	tradeLog ports.TradeLog
	logger   ports.Logger
	metrics  *monitoring.Metrics
	now      func() time.Time

	syncMu sync.Mutex
	// Applied in memory, not yet durable.
	pending map[int64]*domain.Trade
	// Used when no TradeLog is configured.
	watermark time.Time
	seen      map[int64]struct{}
}

// NewTradingService creates a new application service instance.
func NewTradingService(opts Options) (*TradingService, error) {
	switch {
	case opts.Logger == nil:
		return nil, fmt.Errorf("%w: logger is required", ports.ErrConfigurationError)
	case opts.Symbol == "":
		return nil, fmt.Errorf("%w: symbol is required", ports.ErrConfigurationError)
	case opts.Signals == nil || opts.Risk == nil || opts.Market == nil:
		return nil, fmt.Errorf("%w: signal generator, risk gate and market data are required", ports.ErrConfigurationError)
	case opts.Orders == nil && !opts.DryRun:
		return nil, fmt.Errorf("%w: an order executor is required unless dry-run is enabled", ports.ErrConfigurationError)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &TradingService{
		symbol:       opts.Symbol,
		pollInterval: opts.PollInterval,
		dryRun:       opts.DryRun,
		signals:      opts.Signals,
		risk:         opts.Risk,
		market:       opts.Market,
		account:      opts.Account,
		orders:       opts.Orders,
		pnlFeed:      opts.PnLFeed,
		tradeLog:     opts.TradeLog,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		now:          opts.Now,
		watermark:    opts.Now(),
		pending:      make(map[int64]*domain.Trade),
		seen:         make(map[int64]struct{}),
	}, nil
}

// Start runs iterations every poll interval until ctx is canceled or the
// process receives SIGINT/SIGTERM. The risk manager is closed on the way out.
func (s *TradingService) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.logger.Info(ctx, "Starting Trading Service", map[string]interface{}{
		"symbol":       s.symbol,
		"pollInterval": s.pollInterval.String(),
		"dryRun":       s.dryRun,
	})

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		s.runIteration(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info(context.WithoutCancel(ctx), "Shutdown requested, closing risk manager")
			if err := s.risk.Close(context.WithoutCancel(ctx)); err != nil {
				s.logger.Error(context.WithoutCancel(ctx), err, "Risk manager close failed")
				return fmt.Errorf("close risk manager: %w", err)
			}
			s.logger.Info(context.WithoutCancel(ctx), "Trading Service stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (s *TradingService) runIteration(ctx context.Context) {
	outcome, err := s.RunOnce(ctx)
	fields := map[string]interface{}{"symbol": s.symbol, "outcome": outcome}
	switch {
	case err == nil:
		s.logger.Debug(ctx, "Iteration finished", fields)
	case ctx.Err() != nil:
	case outcome == OutcomeRejected:
		fields["reason"] = err.Error()
		s.logger.Warn(ctx, "Trade skipped", fields)
	default:
		s.logger.Error(ctx, err, "Iteration failed", fields)
	}
}

// RunOnce performs one iteration of the trading loop.
func (s *TradingService) RunOnce(ctx context.Context) (Outcome, error) {
	if err := s.SyncRealizedPnL(ctx); err != nil {
		// The gate below reports a halted status if the daily state could not be saved.
		s.logger.Error(ctx, err, "Realized P/L sync failed", map[string]interface{}{"symbol": s.symbol})
	}

	if ok, reason := s.risk.TradingStatus(); !ok {
		s.logger.Info(ctx, "Trading halted", map[string]interface{}{"reason": reason})
		return OutcomeHalted, nil
	}

	sig, err := s.signals.GenerateCombinedSignal(ctx, s.symbol)
	if err != nil {
		return OutcomeNoSignal, fmt.Errorf("combined signal: %w", err)
	}
	side, ok := sig.Side()
	if !ok {
		return OutcomeNoSignal, nil
	}

	entry, err := s.market.GetTickerPrice(ctx, s.symbol)
	if err != nil {
		return OutcomeNoSignal, fmt.Errorf("entry price: %w", err)
	}

	plan, err := s.risk.CalculatePositionPlan(ctx, s.symbol, side, entry)
	if err != nil {
		return OutcomeRejected, fmt.Errorf("position plan: %w", err)
	}
	if err := s.risk.ValidateTrade(ctx, plan); err != nil {
		return OutcomeRejected, fmt.Errorf("trade validation: %w", err)
	}

	if s.dryRun {
		s.logger.Info(ctx, "Dry run: order not placed", planFields(plan))
		return OutcomeDryRun, nil
	}
	if err := s.execute(ctx, plan); err != nil {
		return OutcomeExecuted, err
	}
	return OutcomeExecuted, nil
}

func (s *TradingService) execute(ctx context.Context, plan *domain.PositionPlan) error {
	const op = "execute"
	tick := s.tickSize(ctx)
	qty := formatQuantity(plan.LotSize)
	slPrice := formatPrice(plan.StopLoss, tick)
	tpPrice := formatPrice(plan.TakeProfit, tick)
	exitSide := plan.Side.Opposite()

	s.logger.Info(ctx, op+": Placing entry market order", planFields(plan))
	entryOrder, err := s.orders.PlaceMarketOrder(ctx, plan.Symbol, plan.Side, qty)
	if err != nil {
		return fmt.Errorf("entry market order failed: %w", err)
	}
	s.metrics.RecordOrder(plan.Symbol, string(plan.Side))

	if _, err := s.orders.PlaceStopMarketOrder(ctx, plan.Symbol, exitSide, qty, slPrice); err != nil {
		s.logger.Error(ctx, err, op+": Failed to place stop loss order", map[string]interface{}{"stopPrice": slPrice})
		return s.emergencyClose(ctx, plan.Symbol, exitSide, qty, fmt.Errorf("stop loss order failed after entry: %w", err))
	}
	if _, err := s.orders.PlaceTakeProfitMarketOrder(ctx, plan.Symbol, exitSide, qty, tpPrice); err != nil {
		s.logger.Error(ctx, err, op+": Failed to place take profit order", map[string]interface{}{"stopPrice": tpPrice})
		return s.emergencyClose(ctx, plan.Symbol, exitSide, qty, fmt.Errorf("take profit order failed after entry: %w", err))
	}

	s.logger.Info(ctx, op+": Position opened", map[string]interface{}{
		"orderID":    entryOrder.OrderID,
		"symbol":     plan.Symbol,
		"side":       plan.Side,
		"quantity":   qty,
		"stopLoss":   slPrice,
		"takeProfit": tpPrice,
		"avgPrice":   entryOrder.AvgPrice,
	})
	return nil
}

// emergencyClose flattens a position that could not be protected.
func (s *TradingService) emergencyClose(ctx context.Context, symbol string, side domain.OrderSide, qty string, cause error) error {
	s.logger.Warn(ctx, "Placing emergency closing order", map[string]interface{}{"side": side, "quantity": qty})
	if _, err := s.orders.PlaceMarketOrder(ctx, symbol, side, qty); err != nil {
		s.logger.Error(ctx, err, "EMERGENCY CLOSE FAILED")
		return errors.Join(cause, fmt.Errorf("emergency close failed: %w", err))
	}
	s.metrics.RecordOrder(symbol, string(side))
	return fmt.Errorf("%w (position closed)", cause)
}

// SyncRealizedPnL applies trades closed since the last sync to the daily
// state. Trades from earlier days are recorded but not replayed.
//
// A trade is committed to the trade log only once the daily map holding its
// P/L has been saved. When a save fails the P/L stays in memory and the
// trade is held as pending; the next successful save (an update or Flush)
// commits every pending trade. A restart loses the pending set and the
// uncommitted trades are applied again from the feed.
func (s *TradingService) SyncRealizedPnL(ctx context.Context) error {
	if s.pnlFeed == nil {
		return nil
	}
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	var errs []error
	if len(s.pending) > 0 {
		if err := s.risk.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush daily state for %d pending trades: %w", len(s.pending), err))
		} else if err := s.commitPending(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	since, err := s.syncStart(ctx)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	trades, err := s.pnlFeed.ClosedTradesSince(ctx, s.symbol, since)
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("fetch closed trades: %w", err))...)
	}

	today := domain.DateKey(s.now())
	for _, t := range trades {
		known, err := s.known(ctx, t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if known {
			continue
		}
		if domain.DateKey(t.ExitTime) != today {
			if err := s.commit(ctx, t); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		err = s.risk.UpdateDailyPnL(ctx, t.PNL)
		switch {
		case err == nil:
			s.logger.Info(ctx, "Realized P/L applied", map[string]interface{}{
				"tradeID": t.ID,
				"symbol":  t.Symbol,
				"pnl":     t.PNL,
			})
			// The save that just succeeded also carries every pending P/L.
			if err := s.commitPending(ctx); err != nil {
				errs = append(errs, err)
			}
			if err := s.commit(ctx, t); err != nil {
				// Retried with the pending set; never re-applied.
				s.pending[t.ID] = t
				errs = append(errs, err)
			}
		case errors.Is(err, ports.ErrPersistenceFailure):
			s.pending[t.ID] = t
			errs = append(errs, fmt.Errorf("apply trade %d: %w", t.ID, err))
		default:
			errs = append(errs, fmt.Errorf("apply trade %d: %w", t.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *TradingService) syncStart(ctx context.Context) (time.Time, error) {
	now := s.now().In(time.Local)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	since := s.watermark
	if s.tradeLog != nil {
		last, err := s.tradeLog.LastExitTime(ctx, s.symbol)
		if err != nil {
			return time.Time{}, fmt.Errorf("last recorded trade: %w", err)
		}
		// Re-read the boundary millisecond; known trades are skipped.
		since = last.Add(-time.Millisecond)
	}
	if since.Before(dayStart) {
		since = dayStart
	}
	return since, nil
}

// known reports whether t was already applied, durably or pending.
func (s *TradingService) known(ctx context.Context, t *domain.Trade) (bool, error) {
	if _, ok := s.pending[t.ID]; ok {
		return true, nil
	}
	if s.tradeLog != nil {
		found, err := s.tradeLog.HasTrade(ctx, t.ID)
		if err != nil {
			return false, fmt.Errorf("lookup trade %d: %w", t.ID, err)
		}
		return found, nil
	}
	_, ok := s.seen[t.ID]
	return ok, nil
}

// commit marks t as durably applied.
func (s *TradingService) commit(ctx context.Context, t *domain.Trade) error {
	if s.tradeLog != nil {
		if _, err := s.tradeLog.RecordTrade(ctx, t); err != nil {
			return fmt.Errorf("record trade %d: %w", t.ID, err)
		}
		return nil
	}
	s.seen[t.ID] = struct{}{}
	if t.ExitTime.After(s.watermark) {
		s.watermark = t.ExitTime
	}
	return nil
}

func (s *TradingService) commitPending(ctx context.Context) error {
	var errs []error
	for id, t := range s.pending {
		if err := s.commit(ctx, t); err != nil {
			errs = append(errs, err)
			continue
		}
		delete(s.pending, id)
	}
	return errors.Join(errs...)
}

func (s *TradingService) tickSize(ctx context.Context) float64 {
	if s.account == nil {
		return 0
	}
	spec, err := s.account.GetSymbolSpec(ctx, s.symbol)
	if err != nil {
		s.logger.Warn(ctx, "Symbol spec unavailable, prices sent unrounded", map[string]interface{}{"error": err.Error()})
		return 0
	}
	return spec.Point
}

// formatPrice rounds price to the nearest tick. A zero tick leaves it as is.
func formatPrice(price, tick float64) string {
	p := decimal.NewFromFloat(price)
	if tick > 0 {
		t := decimal.NewFromFloat(tick)
		p = p.Div(t).Round(0).Mul(t)
	}
	return p.String()
}

// formatQuantity renders a lot that is already a multiple of the lot step.
func formatQuantity(qty float64) string {
	return decimal.NewFromFloat(qty).String()
}

func planFields(p *domain.PositionPlan) map[string]interface{} {
	return map[string]interface{}{
		"symbol":     p.Symbol,
		"side":       p.Side,
		"entry":      p.EntryPrice,
		"lot":        p.LotSize,
		"stopLoss":   p.StopLoss,
		"takeProfit": p.TakeProfit,
	}
}
