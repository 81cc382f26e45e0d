package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"time"

	"traderBot/config"
	"traderBot/internal/adapters/binanceclient"
	"traderBot/internal/adapters/csvfeed"
	"traderBot/internal/adapters/jsonstore"
	"traderBot/internal/adapters/logger"
	"traderBot/internal/adapters/paper"
	"traderBot/internal/adapters/sqlite"
	"traderBot/internal/app"
	"traderBot/internal/monitoring"
	"traderBot/internal/ports"
	"traderBot/internal/risk"
	"traderBot/internal/strategy"
	"traderBot/internal/strategy/strategies"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel).With(map[string]interface{}{"symbol": cfg.Symbol})
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error(ctx, err, "Trading bot exited with error")
		log.Fatalf("FATAL: %v", err)
	}
	appLogger.Info(ctx, "Application finished gracefully.")
}

func run(ctx context.Context, cfg *config.Config, appLogger ports.Logger) error {
	metrics := monitoring.NewMetrics()
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error(ctx, err, "Metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		appLogger.Info(ctx, "Metrics endpoint listening", map[string]interface{}{"addr": cfg.MetricsAddr})
	}

	// 3. Market data, account and order execution
	var (
		market   ports.MarketData
		account  ports.Account
		orders   ports.OrderExecutor
		pnlFeed  ports.RealizedPnLFeed
		tradeLog ports.TradeLog
	)
	switch cfg.MarketDataSource {
	case config.SourceCSV:
		feed, err := csvfeed.New(csvfeed.Config{Dir: cfg.CSVDataDir, Logger: appLogger})
		if err != nil {
			return err
		}
		market = feed
	default:
		client, err := binanceclient.New(binanceclient.Config{
			APIKey:       cfg.APIKey,
			SecretKey:    cfg.SecretKey,
			UseTestnet:   cfg.IsTestnet,
			Logger:       appLogger,
			QuoteAsset:   cfg.QuoteAsset,
			ContractSize: cfg.ContractSize,
		})
		if err != nil {
			return err
		}
		if err := client.Ping(ctx); err != nil {
			return err
		}
		market = client
		if !cfg.DryRun {
			if err := client.SyncServerTime(ctx); err != nil {
				return err
			}
			account, orders, pnlFeed = client, client, client
		}
	}
	if account == nil {
		acct, err := paper.New(paper.Config{
			Balance:      cfg.PaperBalance,
			Point:        cfg.PaperPoint,
			VolumeStep:   cfg.Risk.DefaultLotStep,
			VolumeMin:    cfg.Risk.MinLotSize,
			VolumeMax:    cfg.Risk.MaxLotSize,
			ContractSize: cfg.ContractSize,
		})
		if err != nil {
			return err
		}
		account = acct
		appLogger.Info(ctx, "Using paper account", map[string]interface{}{"balance": cfg.PaperBalance})
	}

	// 4. Daily state store
	var store ports.DailyPnLStore
	switch cfg.DailyStateBackend {
	case config.BackendJSON:
		s, err := jsonstore.New(cfg.DailyPnLFile, appLogger)
		if err != nil {
			return err
		}
		store = s
	default:
		repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			return err
		}
		store, tradeLog = repo, repo
	}

	// 5. Risk manager; it owns the store from here on
	riskManager, err := risk.NewManager(risk.Options{
		Config:  cfg.Risk,
		Store:   store,
		Market:  market,
		Account: account,
		Logger:  appLogger,
		Metrics: metrics,
	})
	if err != nil {
		_ = store.Close()
		return err
	}
	if err := riskManager.Load(ctx); err != nil {
		_ = riskManager.Close(ctx)
		return err
	}

	// 6. Strategies
	strategyManager, err := buildStrategyManager(ctx, cfg, market, metrics, appLogger)
	if err != nil {
		_ = riskManager.Close(ctx)
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.StrategyConfigPath != "" {
		if _, err := config.WatchStrategies(runCtx, cfg.StrategyConfigPath, strategyManager, appLogger); err != nil {
			appLogger.Warn(ctx, "Strategy hot reload disabled", map[string]interface{}{"error": err.Error()})
		}
	}

	// 7. Application service
	tradingService, err := app.NewTradingService(app.Options{
		Symbol:       cfg.Symbol,
		PollInterval: cfg.PollInterval,
		DryRun:       cfg.DryRun,
		Signals:      strategyManager,
		Risk:         riskManager,
		Market:       market,
		Account:      account,
		Orders:       orders,
		PnLFeed:      pnlFeed,
		TradeLog:     tradeLog,
		Logger:       appLogger,
		Metrics:      metrics,
	})
	if err != nil {
		_ = riskManager.Close(ctx)
		return err
	}
	return tradingService.Start(runCtx)
}

func buildStrategyManager(ctx context.Context, cfg *config.Config, market ports.MarketData, metrics *monitoring.Metrics, appLogger ports.Logger) (*strategy.Manager, error) {
	method := cfg.CombinationMethod
	historySize := cfg.SignalHistorySize
	specs := config.DefaultStrategies()
	if cfg.StrategyConfigPath != "" {
		file, err := config.LoadStrategies(cfg.StrategyConfigPath)
		if err != nil {
			return nil, err
		}
		specs = file.Strategies
		if file.Method != "" {
			method = file.Method
		}
		if file.HistorySize > 0 {
			historySize = file.HistorySize
		}
	}

	manager, err := strategy.NewManager(strategy.Options{
		Market:      market,
		Logger:      appLogger,
		Metrics:     metrics,
		Method:      method,
		HistorySize: historySize,
		Parallelism: cfg.ParallelStrategies,
	})
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		if err := addStrategy(manager, spec, appLogger); err != nil {
			return nil, err
		}
	}
	appLogger.Info(ctx, "Strategy manager initialized", map[string]interface{}{
		"method":     method,
		"strategies": len(specs),
	})
	return manager, nil
}

func addStrategy(manager *strategy.Manager, spec strategies.Spec, appLogger ports.Logger) error {
	s, err := strategies.Build(spec, appLogger)
	if err != nil {
		return err
	}
	return manager.AddStrategy(s, spec.Enabled, spec.Weight)
}
