package binanceclient

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"traderBot/internal/domain"
)

const (
	incomeTypeRealizedPnL = "REALIZED_PNL"
	maxIncomePerRequest   = 1000
)

// ClosedTradesSince returns realized P/L entries for symbol strictly after
// since, oldest first. Each income record becomes one Trade keyed by its
// transaction ID.
func (c *Client) ClosedTradesSince(ctx context.Context, symbol string, since time.Time) ([]*domain.Trade, error) {
	const op = "ClosedTradesSince"
	var trades []*domain.Trade
	from := since.UnixMilli() + 1

	for {
		page, err := c.futuresClient.NewGetIncomeHistoryService().
			Symbol(symbol).
			IncomeType(incomeTypeRealizedPnL).
			StartTime(from).
			Limit(maxIncomePerRequest).
			Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		for _, inc := range page {
			pnl, err := strconv.ParseFloat(inc.Income, 64)
			if err != nil {
				return nil, c.handleError(ctx, fmt.Errorf("could not parse income '%s': %w", inc.Income, err), op)
			}
			trades = append(trades, &domain.Trade{
				ID:          inc.TranID,
				Symbol:      inc.Symbol,
				PNL:         pnl,
				ExitTime:    time.UnixMilli(inc.Time),
				CloseReason: domain.CloseReasonUnknown,
			})
			if inc.Time >= from {
				from = inc.Time + 1
			}
		}
		if len(page) < maxIncomePerRequest {
			break
		}
	}

	sort.SliceStable(trades, func(i, j int) bool { return trades[i].ExitTime.Before(trades[j].ExitTime) })
	return trades, nil
}
