package binanceclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"traderBot/internal/domain"
	"traderBot/internal/ports"
)

// GetKlines returns the newest limit klines, oldest first.
func (c *Client) GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error) {
	const op = "GetKlines"
	if limit <= 0 || limit > maxKlinesPerRequest {
		return nil, fmt.Errorf("%s: %w: limit %d outside 1..%d", op, ports.ErrInvalidRequest, limit, maxKlinesPerRequest)
	}
	binanceKlines, err := c.futuresClient.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrDataUnavailable, c.handleError(ctx, err, op))
	}
	if len(binanceKlines) < limit {
		return nil, fmt.Errorf("%s: %w: %s %s returned %d bars, %d requested",
			op, ports.ErrDataUnavailable, symbol, interval, len(binanceKlines), limit)
	}

	now := c.now()
	klines := make([]*domain.Kline, 0, len(binanceKlines))
	for _, bk := range binanceKlines {
		k, err := translateKline(bk, symbol, interval, now)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrDataUnavailable, c.handleError(ctx, err, op))
		}
		klines = append(klines, k)
	}
	return klines, nil
}

// GetKlinesRange pages through all klines between start and end.
func (c *Client) GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error) {
	const op = "GetKlinesRange"
	var all []*domain.Kline
	from := start

	for {
		page, err := c.futuresClient.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(maxKlinesPerRequest).
			Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(page) == 0 {
			break
		}
		now := c.now()
		for _, bk := range page {
			k, err := translateKline(bk, symbol, interval, now)
			if err != nil {
				return nil, c.handleError(ctx, err, op)
			}
			all = append(all, k)
		}
		from = time.UnixMilli(page[len(page)-1].CloseTime + 1)
		if from.After(end) || len(page) < maxKlinesPerRequest {
			break
		}
	}
	return all, nil
}

// GetTickerPrice retrieves the last traded price for symbol.
func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	const op = "GetTickerPrice"
	tickers, err := c.futuresClient.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	if len(tickers) == 0 {
		return 0, fmt.Errorf("%s: %w: no ticker for %s", op, ports.ErrDataUnavailable, symbol)
	}
	price, err := strconv.ParseFloat(tickers[0].LastPrice, 64)
	if err != nil {
		return 0, c.handleError(ctx, fmt.Errorf("could not parse price '%s': %w", tickers[0].LastPrice, err), op)
	}
	return price, nil
}
