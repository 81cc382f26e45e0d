package binanceclient

import (
	"context"
	"fmt"
	"strconv"

	"traderBot/internal/domain"
	"traderBot/internal/ports"

	"github.com/adshao/go-binance/v2/futures"
)

const symbolStatusTrading = "TRADING"

// GetBalance returns the wallet balance of the configured quote asset.
func (c *Client) GetBalance(ctx context.Context) (float64, error) {
	const op = "GetBalance"
	account, err := c.futuresClient.NewGetAccountService().Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	for _, bal := range account.Assets {
		if bal.Asset != c.quoteAsset {
			continue
		}
		balance, err := strconv.ParseFloat(bal.WalletBalance, 64)
		if err != nil {
			return 0, c.handleError(ctx, fmt.Errorf("could not parse balance '%s' for asset %s: %w", bal.WalletBalance, c.quoteAsset, err), op)
		}
		return balance, nil
	}
	return 0, fmt.Errorf("%s: %w: asset %s not in account", op, ports.ErrNotFound, c.quoteAsset)
}

// GetPipValuePerLot returns point * 10 * contract size.
func (c *Client) GetPipValuePerLot(ctx context.Context, symbol string) (float64, error) {
	spec, err := c.GetSymbolSpec(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return spec.PipSize() * c.contractSize, nil
}

// GetSymbolSpec returns the instrument constraints from exchange info,
// cached for the configured TTL.
func (c *Client) GetSymbolSpec(ctx context.Context, symbol string) (*domain.SymbolSpec, error) {
	c.specMu.Lock()
	cached, ok := c.specs[symbol]
	c.specMu.Unlock()
	if ok && c.now().Sub(cached.fetched) < c.specTTL {
		spec := cached.spec
		return &spec, nil
	}

	if err := c.refreshSpecs(ctx); err != nil {
		return nil, err
	}

	c.specMu.Lock()
	defer c.specMu.Unlock()
	cached, ok = c.specs[symbol]
	if !ok {
		return nil, fmt.Errorf("GetSymbolSpec: %w: symbol %s", ports.ErrNotFound, symbol)
	}
	spec := cached.spec
	return &spec, nil
}

// IsTradable reports whether the exchange lists symbol as TRADING.
func (c *Client) IsTradable(ctx context.Context, symbol string) (bool, error) {
	spec, err := c.GetSymbolSpec(ctx, symbol)
	if err != nil {
		return false, err
	}
	return spec.Tradable, nil
}

func (c *Client) refreshSpecs(ctx context.Context) error {
	const op = "GetExchangeInfo"
	info, err := c.futuresClient.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return c.handleError(ctx, err, op)
	}

	fetched := c.now()
	specs := make(map[string]cachedSpec, len(info.Symbols))
	for i := range info.Symbols {
		spec, err := translateSymbol(&info.Symbols[i])
		if err != nil {
			c.logger.Warn(ctx, "Skipping symbol with unreadable filters", map[string]interface{}{
				"symbol": info.Symbols[i].Symbol,
				"error":  err.Error(),
			})
			continue
		}
		specs[spec.Symbol] = cachedSpec{spec: *spec, fetched: fetched}
	}

	c.specMu.Lock()
	c.specs = specs
	c.specMu.Unlock()
	c.logger.Debug(ctx, "Exchange info refreshed", map[string]interface{}{"symbols": len(specs)})
	return nil
}

func translateSymbol(s *futures.Symbol) (*domain.SymbolSpec, error) {
	spec := &domain.SymbolSpec{
		Symbol:   s.Symbol,
		Tradable: s.Status == symbolStatusTrading,
	}
	if pf := s.PriceFilter(); pf != nil {
		tick, err := strconv.ParseFloat(pf.TickSize, 64)
		if err != nil {
			return nil, fmt.Errorf("tick size '%s': %w", pf.TickSize, err)
		}
		spec.Point = tick
	}
	if lf := s.LotSizeFilter(); lf != nil {
		var err error
		if spec.VolumeStep, err = strconv.ParseFloat(lf.StepSize, 64); err != nil {
			return nil, fmt.Errorf("step size '%s': %w", lf.StepSize, err)
		}
		if spec.VolumeMin, err = strconv.ParseFloat(lf.MinQuantity, 64); err != nil {
			return nil, fmt.Errorf("min qty '%s': %w", lf.MinQuantity, err)
		}
		if spec.VolumeMax, err = strconv.ParseFloat(lf.MaxQuantity, 64); err != nil {
			return nil, fmt.Errorf("max qty '%s': %w", lf.MaxQuantity, err)
		}
	}
	if spec.Point <= 0 {
		return nil, fmt.Errorf("missing tick size")
	}
	return spec, nil
}
