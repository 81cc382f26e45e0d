package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the bot's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	strategySignals *prometheus.CounterVec
	strategyErrors  *prometheus.CounterVec
	combinedSignals *prometheus.CounterVec
	planOutcomes    *prometheus.CounterVec
	dailyPnL        prometheus.Gauge
	dailyTrades     prometheus.Gauge
	persistFailures prometheus.Counter
	ordersPlaced    *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		strategySignals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trader_bot_strategy_signals_total",
				Help: "Individual strategy signals by strategy and value",
			},
			[]string{"strategy", "signal"},
		),
		strategyErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trader_bot_strategy_data_errors_total",
				Help: "Market data failures that degraded a strategy to NONE",
			},
			[]string{"strategy"},
		),
		combinedSignals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trader_bot_combined_signals_total",
				Help: "Combined decisions by combination method and value",
			},
			[]string{"method", "signal"},
		),
		planOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trader_bot_position_plans_total",
				Help: "Position plan attempts by outcome",
			},
			[]string{"outcome"},
		),
		dailyPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trader_bot_daily_pnl",
			Help: "Realized profit/loss for the current day",
		}),
		dailyTrades: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trader_bot_daily_trades",
			Help: "Closed trades for the current day",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trader_bot_daily_state_persist_failures_total",
			Help: "Failed writes of the daily P/L state",
		}),
		ordersPlaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trader_bot_orders_total",
				Help: "Orders submitted by symbol and side",
			},
			[]string{"symbol", "side"},
		),
	}

	m.registry.MustRegister(
		m.strategySignals,
		m.strategyErrors,
		m.combinedSignals,
		m.planOutcomes,
		m.dailyPnL,
		m.dailyTrades,
		m.persistFailures,
		m.ordersPlaced,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordStrategySignal counts a single strategy's vote.
func (m *Metrics) RecordStrategySignal(strategy, signal string) {
	if m == nil {
		return
	}
	m.strategySignals.WithLabelValues(strategy, signal).Inc()
}

// RecordStrategyError counts a market data failure for a strategy.
func (m *Metrics) RecordStrategyError(strategy string) {
	if m == nil {
		return
	}
	m.strategyErrors.WithLabelValues(strategy).Inc()
}

// RecordCombinedSignal counts a combined decision.
func (m *Metrics) RecordCombinedSignal(method, signal string) {
	if m == nil {
		return
	}
	m.combinedSignals.WithLabelValues(method, signal).Inc()
}

// RecordPlanOutcome counts a position plan attempt ("ok", "invalid_params", "rejected", ...).
func (m *Metrics) RecordPlanOutcome(outcome string) {
	if m == nil {
		return
	}
	m.planOutcomes.WithLabelValues(outcome).Inc()
}

// SetDailyPnL publishes today's realized P/L and trade count.
func (m *Metrics) SetDailyPnL(pnl float64, trades int) {
	if m == nil {
		return
	}
	m.dailyPnL.Set(pnl)
	m.dailyTrades.Set(float64(trades))
}

// RecordPersistFailure counts a failed daily state write.
func (m *Metrics) RecordPersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

// RecordOrder counts a submitted order.
func (m *Metrics) RecordOrder(symbol, side string) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(symbol, side).Inc()
}
