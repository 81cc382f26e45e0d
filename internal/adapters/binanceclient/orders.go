package binanceclient

import (
	"context"
	"strconv"
	"time"

	"traderBot/internal/domain"
	"traderBot/internal/ports"

	"github.com/adshao/go-binance/v2/futures"
)

// PlaceMarketOrder places a market order.
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string) (*ports.OrderResponse, error) {
	const op = "PlaceMarketOrder"
	order, err := c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(futures.SideType(side)).
		Type(futures.OrderTypeMarket).
		Quantity(quantity).
		Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	resp := translateOrderResponse(order)
	c.logger.Info(ctx, op+" successful", map[string]interface{}{
		"symbol":   symbol,
		"side":     side,
		"quantity": quantity,
		"orderID":  resp.OrderID,
		"avgPrice": resp.AvgPrice,
	})
	return resp, nil
}

// PlaceStopMarketOrder places a reduce-only stop-market order.
func (c *Client) PlaceStopMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string, stopPrice string) (*ports.OrderResponse, error) {
	return c.placeProtective(ctx, "PlaceStopMarketOrder", futures.OrderTypeStopMarket, symbol, side, quantity, stopPrice)
}

// PlaceTakeProfitMarketOrder places a reduce-only take-profit-market order.
func (c *Client) PlaceTakeProfitMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string, stopPrice string) (*ports.OrderResponse, error) {
	return c.placeProtective(ctx, "PlaceTakeProfitMarketOrder", futures.OrderTypeTakeProfitMarket, symbol, side, quantity, stopPrice)
}

func (c *Client) placeProtective(ctx context.Context, op string, orderType futures.OrderType, symbol string, side domain.OrderSide, quantity, stopPrice string) (*ports.OrderResponse, error) {
	order, err := c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(futures.SideType(side)).
		Type(orderType).
		Quantity(quantity).
		StopPrice(stopPrice).
		ReduceOnly(true).
		Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	resp := translateOrderResponse(order)
	c.logger.Info(ctx, op+" successful", map[string]interface{}{
		"symbol":    symbol,
		"side":      side,
		"quantity":  quantity,
		"stopPrice": stopPrice,
		"orderID":   resp.OrderID,
		"status":    resp.Status,
	})
	return resp, nil
}

func translateOrderResponse(order *futures.CreateOrderResponse) *ports.OrderResponse {
	if order == nil {
		return nil
	}
	price, _ := strconv.ParseFloat(order.Price, 64)
	avgPrice, _ := strconv.ParseFloat(order.AvgPrice, 64)
	origQty, _ := strconv.ParseFloat(order.OrigQuantity, 64)
	execQty, _ := strconv.ParseFloat(order.ExecutedQuantity, 64)

	return &ports.OrderResponse{
		OrderID:       order.OrderID,
		Symbol:        order.Symbol,
		ClientOrderID: order.ClientOrderID,
		Price:         price,
		AvgPrice:      avgPrice,
		OrigQuantity:  origQty,
		ExecutedQty:   execQty,
		Status:        string(order.Status),
		Type:          string(order.Type),
		Side:          string(order.Side),
		Timestamp:     time.UnixMilli(order.UpdateTime),
	}
}
