package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"traderBot/internal/domain"
)

var klineHeader = []string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"}

// KlineFileName returns the conventional file name for a symbol/interval series.
func KlineFileName(dir, symbol, interval string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", symbol, interval))
}

// WriteKlinesToCSV writes klines, oldest first, with a header row.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(klineHeader); err != nil {
		return err
	}
	for _, k := range klines {
		err := writer.Write([]string{
			k.OpenTime.UTC().Format(time.RFC3339),
			k.CloseTime.UTC().Format(time.RFC3339),
			k.Symbol,
			k.Interval,
			strconv.FormatFloat(k.Open, 'f', -1, 64),
			strconv.FormatFloat(k.High, 'f', -1, 64),
			strconv.FormatFloat(k.Low, 'f', -1, 64),
			strconv.FormatFloat(k.Close, 'f', -1, 64),
			strconv.FormatFloat(k.Volume, 'f', -1, 64),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Sync()
}

// ReadKlinesFromCSV reads a file written by WriteKlinesToCSV. Rows must be
// in strictly increasing open time.
func ReadKlinesFromCSV(filename string) ([]*domain.Kline, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(klineHeader)

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header of %s: %w", filename, err)
	}

	var klines []*domain.Kline
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		k, err := parseKline(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, line, err)
		}
		if n := len(klines); n > 0 && !k.OpenTime.After(klines[n-1].OpenTime) {
			return nil, fmt.Errorf("%s line %d: open time %s is not after previous bar", filename, line, k.OpenTime.Format(time.RFC3339))
		}
		klines = append(klines, k)
	}
	return klines, nil
}

func parseKline(rec []string) (*domain.Kline, error) {
	openTime, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return nil, fmt.Errorf("open_time: %w", err)
	}
	closeTime, err := time.Parse(time.RFC3339, rec[1])
	if err != nil {
		return nil, fmt.Errorf("close_time: %w", err)
	}
	var vals [5]float64
	for i := range vals {
		v, err := strconv.ParseFloat(rec[4+i], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", klineHeader[4+i], err)
		}
		vals[i] = v
	}
	return &domain.Kline{
		OpenTime:  openTime,
		CloseTime: closeTime,
		Symbol:    rec[2],
		Interval:  rec[3],
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
		IsFinal:   true,
	}, nil
}
