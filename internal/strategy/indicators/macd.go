package indicators

import "fmt"

// MACDResult holds the aligned MACD series. All slices have the input length;
// undefined leading positions are NaN.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACDRequired returns the number of closes needed for the first signal-line value.
func MACDRequired(fast, slow, signal int) int {
	return max(fast, slow) + signal - 1
}

// MACDSeries computes MACD = EMA(fast) - EMA(slow) over closes and the signal
// line as the EMA(signal) of the defined part of the MACD line.
func MACDSeries(closes []float64, fast, slow, signal int) (*MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, fmt.Errorf("MACD periods must be positive (fast=%d slow=%d signal=%d)", fast, slow, signal)
	}
	need := MACDRequired(fast, slow, signal)
	if len(closes) < need {
		return nil, insufficient("MACD", need, len(closes))
	}

	fastEMA, err := EMASeries(closes, fast)
	if err != nil {
		return nil, err
	}
	slowEMA, err := EMASeries(closes, slow)
	if err != nil {
		return nil, err
	}

	res := &MACDResult{
		MACD:      nanSeries(len(closes)),
		Signal:    nanSeries(len(closes)),
		Histogram: nanSeries(len(closes)),
	}
	start := max(fast, slow) - 1
	for i := start; i < len(closes); i++ {
		res.MACD[i] = fastEMA[i] - slowEMA[i]
	}

	signalPart, err := EMASeries(res.MACD[start:], signal)
	if err != nil {
		return nil, err
	}
	for j, v := range signalPart {
		i := start + j
		res.Signal[i] = v
		res.Histogram[i] = res.MACD[i] - v
	}
	return res, nil
}
