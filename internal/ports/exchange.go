package ports

import (
	"context"
	"time"

	"traderBot/internal/domain"
)

// OrderResponse represents the essential details returned after placing an order.
type OrderResponse struct {
	OrderID       int64     // Exchange's order ID
	Symbol        string    // Symbol for the order
	ClientOrderID string    // User-defined order ID
	Price         float64   // Price of the order (might be 0 for market orders initially)
	AvgPrice      float64   // Average filled price
	OrigQuantity  float64   // Original quantity requested
	ExecutedQty   float64   // Quantity filled
	Status        string    // Order status (e.g., NEW, FILLED, CANCELED)
	Type          string    // Order type (e.g., MARKET, STOP_MARKET)
	Side          string    // Order side (BUY, SELL)
	Timestamp     time.Time // Time the order response was generated
}

// MarketData supplies price bars to strategies and the risk manager.
type MarketData interface {
	// GetKlines returns the latest `limit` klines, oldest first.
	// Fails with ErrDataUnavailable when fewer than `limit` bars can be returned.
	GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error)

	// GetTickerPrice retrieves the last traded price for a given symbol.
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)
}

// Account exposes the account and instrument facts needed for position sizing.
type Account interface {
	// GetBalance returns the account balance in the account currency.
	GetBalance(ctx context.Context) (float64, error)
	// GetPipValuePerLot returns the value of one pip for one lot of symbol.
	GetPipValuePerLot(ctx context.Context, symbol string) (float64, error)
	// GetSymbolSpec returns point size, lot step and volume bounds for symbol.
	GetSymbolSpec(ctx context.Context, symbol string) (*domain.SymbolSpec, error)
	// IsTradable reports whether orders can currently be placed on symbol.
	IsTradable(ctx context.Context, symbol string) (bool, error)
}

// OrderExecutor submits orders for an approved position plan.
type OrderExecutor interface {
	// PlaceMarketOrder places a market order.
	PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string) (*OrderResponse, error)
	// PlaceStopMarketOrder places a protective stop-market order.
	PlaceStopMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string, stopPrice string) (*OrderResponse, error)
	// PlaceTakeProfitMarketOrder places a take-profit-market order.
	PlaceTakeProfitMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string, stopPrice string) (*OrderResponse, error)
}

// RealizedPnLFeed reports positions closed since a point in time.
type RealizedPnLFeed interface {
	ClosedTradesSince(ctx context.Context, symbol string, since time.Time) ([]*domain.Trade, error)
}
