// Package main is the entry point for the Aurora staking dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/fd1az/aurora-staking/business/blockchain"
	blockchainDI "github.com/fd1az/aurora-staking/business/blockchain/di"
	"github.com/fd1az/aurora-staking/business/pricing"
	"github.com/fd1az/aurora-staking/business/rewards"
	rewardsDI "github.com/fd1az/aurora-staking/business/rewards/di"
	"github.com/fd1az/aurora-staking/business/staking"
	stakingDI "github.com/fd1az/aurora-staking/business/staking/di"
	stakingDomain "github.com/fd1az/aurora-staking/business/staking/domain"
	"github.com/fd1az/aurora-staking/internal/apm"
	"github.com/fd1az/aurora-staking/internal/config"
	"github.com/fd1az/aurora-staking/internal/health"
	"github.com/fd1az/aurora-staking/internal/logger"
	"github.com/fd1az/aurora-staking/internal/metrics"
	"github.com/fd1az/aurora-staking/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// maxHeadAge is how stale the last head may be before the rpc check fails.
const maxHeadAge = time.Minute

type options struct {
	configPath string
	account    string
	once       bool
	action     string
	amount     string
	stream     uint64
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	networkName := flag.String("network", "", "Network to use (mainnet or testnet)")
	flag.StringVar(&opts.account, "account", "", "Account address to synchronize")
	flag.BoolVar(&opts.once, "once", false, "Print metrics and the account snapshot once, then exit")
	flag.StringVar(&opts.action, "action", "", "Staking action to submit (approve, stake, unstake, unstake-all, withdraw, withdraw-all, claim, claim-all)")
	flag.StringVar(&opts.amount, "amount", "", "Token amount for stake and unstake, e.g. 12.5")
	flag.Uint64Var(&opts.stream, "stream", 0, "Stream id for claim and withdraw")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("aurora-staking %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Flags win over the config file and environment.
	if *networkName != "" {
		os.Setenv("STK_NETWORK", *networkName)
	}
	if opts.account != "" {
		os.Setenv("STK_ACCOUNT", opts.account)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	log.Info(ctx, "starting aurora staking",
		"version", version,
		"environment", cfg.App.Environment,
		"network", cfg.NetworkParams().Name(),
	)

	var account common.Address
	if cfg.Account.Address != "" {
		if !common.IsHexAddress(cfg.Account.Address) {
			return fmt.Errorf("invalid account address %q", cfg.Account.Address)
		}
		account = common.HexToAddress(cfg.Account.Address)
	}

	var action *stakingDomain.Action
	if opts.action != "" {
		if account == (common.Address{}) {
			return fmt.Errorf("-action requires an account")
		}
		a, err := parseAction(opts.action, opts.amount, opts.stream, cfg.NetworkParams().BaseAsset())
		if err != nil {
			return err
		}
		action = &a
	}

	if cfg.Telemetry.Enabled {
		stop, err := startTelemetry(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	mono, err := monolith.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	modules := []monolith.Module{
		&blockchain.Module{},
		&pricing.Module{},
		&rewards.Module{},
		&staking.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	d := &dashboard{
		mono:    mono,
		log:     log,
		account: account,
	}

	healthServer := health.NewServer(cfg.Telemetry.HealthPort, version, log)
	d.registerChecks(healthServer)
	if err := healthServer.Start(ctx); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Telemetry.HealthPort)
		defer shutdown(healthServer.Stop)
	}

	reporter := stakingDI.GetReporter(mono.Services())
	reporter.Start(mono.Network().Name())
	defer reporter.Stop()

	if action != nil {
		return d.runAction(ctx, *action)
	}

	if err := d.refresh(ctx); err != nil && opts.once {
		return err
	}
	if opts.once {
		return nil
	}

	return d.loop(ctx, cfg.Sync.RefreshInterval)
}

func startTelemetry(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (func(), error) {
	provider := apm.ParseProvider(cfg.Telemetry.Tracer)
	traceProvider, err := apm.NewTraceProvider(cfg.Telemetry.ServiceName,
		apm.WithProvider(provider, apm.ExporterConfig{
			Endpoint: cfg.Telemetry.OTLPEndpoint,
			Headers:  cfg.Telemetry.Headers(),
		}, log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	log.Info(ctx, "tracing initialized", "provider", provider, "endpoint", cfg.Telemetry.OTLPEndpoint)

	metricOpts := []metrics.OptionFn{
		metrics.WithServiceName(cfg.Telemetry.ServiceName),
		metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
	}
	if provider == apm.OTLPGRPCProvider {
		insecure := metrics.SecureOtel
		if strings.HasPrefix(cfg.Telemetry.OTLPEndpoint, "http://") {
			insecure = metrics.InsecureOtel
		}
		metricOpts = append(metricOpts, metrics.WithProviderConfig(
			metrics.NewOtelCollectorConfig(cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.Headers(), insecure)))
	}

	meterProvider, err := metrics.NewMetricProvider(ctx, metricOpts...)
	if err != nil {
		_ = traceProvider.Stop()
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	metricsServer := metrics.NewServer(cfg.Telemetry.PrometheusPort, log)
	if err := metricsServer.Start(ctx); err != nil {
		log.Warn(ctx, "failed to start metrics server", "error", err)
	}

	return func() {
		shutdown(metricsServer.Stop)
		shutdown(meterProvider.Shutdown)
		_ = traceProvider.Stop()
	}, nil
}

func shutdown(stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = stop(ctx)
}

type dashboard struct {
	mono    monolith.Monolith
	log     logger.LoggerInterface
	account common.Address
}

func (d *dashboard) hasAccount() bool {
	return d.account != (common.Address{})
}

func (d *dashboard) registerChecks(s *health.Server) {
	chain := blockchainDI.GetBlockchainService(d.mono.Services())
	s.RegisterCheck("rpc", func(ctx context.Context) (bool, string) {
		age, ok := chain.HeadAge(time.Now())
		if !ok {
			return false, "no head received"
		}
		return age <= maxHeadAge, fmt.Sprintf("last head %s ago", age.Round(time.Second))
	})

	if !d.hasAccount() {
		return
	}
	sync := stakingDI.GetSynchronizer(d.mono.Services())
	s.RegisterCheck("snapshot", func(ctx context.Context) (bool, string) {
		if sync.Synced() {
			return true, ""
		}
		return false, "account snapshot not synced"
	})
}

// refresh recomputes protocol metrics, resyncs the account and prints both.
func (d *dashboard) refresh(ctx context.Context) error {
	services := d.mono.Services()
	reporter := stakingDI.GetReporter(services)
	chain := blockchainDI.GetBlockchainService(services)

	reporter.ReportConnection("rpc", chain.Status())

	protocol, err := rewardsDI.GetMetricsService(services).Compute(ctx, time.Now())
	if err != nil {
		d.log.Error(ctx, "failed to compute protocol metrics", "error", err)
		return err
	}
	reporter.ReportMetrics(d.mono.Network().Name(), protocol)

	if !d.hasAccount() {
		return nil
	}

	sync := stakingDI.GetSynchronizer(services)
	if err := sync.Sync(ctx, d.account); err != nil {
		d.log.Error(ctx, "failed to sync account", "account", d.account.Hex(), "error", err)
		return err
	}

	snap, synced := sync.Current()
	reporter.ReportAccount(snap, synced, protocol.VoteCirculatingSupply)
	return nil
}

// loop refreshes on every interval tick until ctx is cancelled. New heads
// keep the connection status current between refreshes.
func (d *dashboard) loop(ctx context.Context, interval time.Duration) error {
	heads, err := blockchainDI.GetBlockchainService(d.mono.Services()).SubscribeBlocks(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to blocks: %w", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info(ctx, "shutting down")
			return nil
		case block, ok := <-heads:
			if !ok {
				heads = nil
				continue
			}
			d.log.Debug(ctx, "new head", "block", block.Number)
		case <-ticker.C:
			_ = d.refresh(ctx)
		}
	}
}

func (d *dashboard) runAction(ctx context.Context, action stakingDomain.Action) error {
	services := d.mono.Services()
	reporter := stakingDI.GetReporter(services)

	receipt, err := stakingDI.GetActionRunner(services).Run(ctx, d.account, action)
	if receipt != nil {
		reporter.ReportReceipt(action, receipt)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	snap, synced := stakingDI.GetSynchronizer(services).Current()
	protocol, err := rewardsDI.GetMetricsService(services).Compute(ctx, time.Now())
	if err != nil {
		d.log.Warn(ctx, "failed to compute protocol metrics", "error", err)
		reporter.ReportAccount(snap, synced, nil)
		return nil
	}
	reporter.ReportAccount(snap, synced, protocol.VoteCirculatingSupply)
	return nil
}
