package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"traderBot/internal/domain"
	"traderBot/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	// Binance caps a single klines request at this many bars.
	maxKlinesPerRequest = 1500
)

// Client implements the market data, account, order and realized P/L ports
// on top of the USDⓈ-M futures API.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
	quoteAsset    string
	contractSize  float64
	specTTL       time.Duration
	now           func() time.Time

	specMu sync.Mutex
	specs  map[string]cachedSpec
}

type cachedSpec struct {
	spec    domain.SymbolSpec
	fetched time.Time
}

var (
	_ ports.MarketData      = (*Client)(nil)
	_ ports.Account         = (*Client)(nil)
	_ ports.OrderExecutor   = (*Client)(nil)
	_ ports.RealizedPnLFeed = (*Client)(nil)
)

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey       string
	SecretKey    string
	UseTestnet   bool
	Logger       ports.Logger
	QuoteAsset   string        // Balance asset, USDT by default
	ContractSize float64       // Units per lot, 1 by default
	SpecTTL      time.Duration // How long exchange info is cached, 1h by default
	// BaseURL overrides the production/testnet endpoint.
	BaseURL string
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Warn(context.Background(), "APIKey or SecretKey is empty. Client will only work for public endpoints.")
	}
	if cfg.QuoteAsset == "" {
		cfg.QuoteAsset = "USDT"
	}
	if cfg.ContractSize <= 0 {
		cfg.ContractSize = 1
	}
	if cfg.SpecTTL <= 0 {
		cfg.SpecTTL = time.Hour
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	switch {
	case cfg.BaseURL != "":
		client.BaseURL = cfg.BaseURL
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{
		"baseURL": client.BaseURL,
		"testnet": cfg.UseTestnet,
	})

	return &Client{
		futuresClient: client,
		logger:        cfg.Logger,
		quoteAsset:    cfg.QuoteAsset,
		contractSize:  cfg.ContractSize,
		specTTL:       cfg.SpecTTL,
		now:           time.Now,
		specs:         make(map[string]cachedSpec),
	}, nil
}

// handleError translates Binance API errors into ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003:
			mappedErr = ports.ErrRateLimited
		case -1021: // timestamp outside recvWindow
			mappedErr = ports.ErrTimeout
		case -1022:
			mappedErr = ports.ErrAuthenticationFailed
		case -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1121, -1125, -1127, -1128, -1130,
			-4003, -4014, -4015:
			mappedErr = ports.ErrInvalidRequest
		case -2010, -2022:
			mappedErr = ports.ErrOrderPlacementFailed
		case -2013, -4044:
			mappedErr = ports.ErrNotFound
		case -2014, -2015:
			mappedErr = ports.ErrInvalidAPIKeys
		case -2019, -3005, -3041, -4047:
			mappedErr = ports.ErrInsufficientFunds
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Error(ctx, err, operation+" failed with API error", fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	case strings.Contains(err.Error(), "use of closed network connection"),
		strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, operation+" failed", fields)
	return finalErr
}

// Ping checks connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.futuresClient.NewPingService().Do(ctx); err != nil {
		return c.handleError(ctx, err, "Ping")
	}
	c.logger.Debug(ctx, "Ping successful")
	return nil
}

// SyncServerTime aligns request timestamps with the exchange clock.
func (c *Client) SyncServerTime(ctx context.Context) error {
	offset, err := c.futuresClient.NewSetServerTimeService().Do(ctx)
	if err != nil {
		return c.handleError(ctx, err, "SyncServerTime")
	}
	c.logger.Debug(ctx, "Server time synchronized", map[string]interface{}{"offsetMs": offset})
	return nil
}
