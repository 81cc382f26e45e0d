package indicators

import (
	"time"

	"traderBot/internal/domain"
)

func klinesFromCloses(closes ...float64) []*domain.Kline {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*domain.Kline, len(closes))
	for i, c := range closes {
		out[i] = &domain.Kline{
			OpenTime: start.Add(time.Duration(i) * time.Minute),
			Open:     c,
			High:     c,
			Low:      c,
			Close:    c,
		}
	}
	return out
}

// wilderCloses is the classic 14-period RSI worked example.
var wilderCloses = []float64{
	44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08, 45.89,
	46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64, 46.21, 46.25,
	45.71, 46.45, 45.78, 45.35, 44.03, 44.18, 44.22, 44.57, 43.42, 42.66, 43.13,
}
