package binanceclient

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"traderBot/internal/domain"

	"github.com/adshao/go-binance/v2/futures"
)

// translateKline converts a futures kline. A bar whose close time is not yet
// past now is still forming and is marked non-final.
func translateKline(bk *futures.Kline, symbol, interval string, now time.Time) (*domain.Kline, error) {
	if bk == nil {
		return nil, errors.New("received nil historical kline")
	}
	var vals [5]float64
	for i, raw := range [5]string{bk.Open, bk.High, bk.Low, bk.Close, bk.Volume} {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing kline value '%s': %w", raw, err)
		}
		vals[i] = v
	}

	closeTime := time.UnixMilli(bk.CloseTime)
	return &domain.Kline{
		OpenTime:  time.UnixMilli(bk.OpenTime),
		CloseTime: closeTime,
		Symbol:    symbol,
		Interval:  interval,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
		IsFinal:   now.After(closeTime),
	}, nil
}
