package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")
	ErrClosed             = errors.New("component is closed")

	// Signal and risk errors
	ErrInsufficientData      = errors.New("insufficient data for calculation")
	ErrInvalidRiskParameters = errors.New("invalid risk parameters")
	ErrDataUnavailable       = errors.New("market data unavailable")
	ErrPersistenceFailure    = errors.New("daily state could not be persisted")
	ErrLotSizeOutOfRange     = errors.New("lot size outside allowed range")
	ErrTradingHalted         = errors.New("trading halted by daily limits")
	ErrSymbolNotTradable     = errors.New("symbol is not tradable")
	ErrStrategyNotFound      = errors.New("strategy not found")
	ErrInvalidStrategyConfig = errors.New("invalid strategy configuration")

	// Exchange Specific Errors
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")
	ErrInvalidAPIKeys       = errors.New("invalid API keys or permissions")
	ErrInsufficientFunds    = errors.New("insufficient funds for operation")
	ErrOrderPlacementFailed = errors.New("failed to place order")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrUpdateFailed = errors.New("database update failed")
)
