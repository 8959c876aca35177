package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/tapnet/tap-core/config"
	"github.com/tapnet/tap-core/engine/manager"
	"github.com/tapnet/tap-core/module/aggregation"
	"github.com/tapnet/tap-core/module/checks"
	"github.com/tapnet/tap-core/module/mempool/stdmap"
	"github.com/tapnet/tap-core/module/metrics"
	"github.com/tapnet/tap-core/module/receipt"
	bstorage "github.com/tapnet/tap-core/storage/badger"
)

// TapNodeBuilder assembles the receipt core of a receiver: configuration, logging, the
// badger database behind the reference checks, metrics, and the manager.
type TapNodeBuilder struct {
	Config     *config.TapConfig
	Logger     zerolog.Logger
	DB         *badger.DB
	Registerer prometheus.Registerer
	Manager    *manager.Manager

	Allocations *bstorage.Allocations
	Senders     *bstorage.Senders
	Appraisals  *bstorage.Appraisals
	RAVs        *bstorage.RAVs

	name   string
	flags  *pflag.FlagSet
	output io.Writer
}

// TapNode returns a builder whose configuration flags are registered on flags.
func TapNode(name string, flags *pflag.FlagSet) (*TapNodeBuilder, error) {
	defaults, err := config.DefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load default config: %w", err)
	}
	config.InitializePFlagSet(flags, defaults)

	return &TapNodeBuilder{
		name:       name,
		flags:      flags,
		output:     os.Stderr,
		Registerer: prometheus.DefaultRegisterer,
	}, nil
}

// WithRegisterer sets where the node's metrics are registered.
func (tnb *TapNodeBuilder) WithRegisterer(registerer prometheus.Registerer) *TapNodeBuilder {
	tnb.Registerer = registerer
	return tnb
}

// WithLogOutput sets where the node logs to.
func (tnb *TapNodeBuilder) WithLogOutput(output io.Writer) *TapNodeBuilder {
	tnb.output = output
	return tnb
}

// Initialize loads the configuration from the parsed flags and builds every component.
// The caller must Close the builder once done.
func (tnb *TapNodeBuilder) Initialize() error {
	conf, err := config.Load(tnb.flags)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	tnb.Config = conf

	tnb.initLogger()

	if err := tnb.initDatabase(); err != nil {
		return err
	}

	tnb.initManager()

	tnb.Logger.Info().Msgf("tap %s node initialized", tnb.name)
	return nil
}

func (tnb *TapNodeBuilder) initLogger() {
	// configure logger with standard level, node name and UTC timestamp
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	tnb.Logger = zerolog.New(tnb.output).
		Level(tnb.Config.Core.Level()).
		With().
		Timestamp().
		Str("node", tnb.name).
		Logger()

	tnb.Logger.Info().
		Uint64("chain_id", tnb.Config.Core.ChainID).
		Str("verifying_contract", tnb.Config.Core.VerifyingContract).
		Msg("initializing receipt core")
}

func (tnb *TapNodeBuilder) initDatabase() error {
	db, err := badger.Open(badger.DefaultOptions(tnb.Config.Core.DataDir).WithLogger(nil))
	if err != nil {
		return fmt.Errorf("could not open key-value store at %s: %w", tnb.Config.Core.DataDir, err)
	}
	tnb.DB = db
	return nil
}

func (tnb *TapNodeBuilder) initManager() {
	core := tnb.Config.Core
	domain := core.Domain()
	cacheMetrics := metrics.NewCacheCollector(tnb.Registerer)
	tapMetrics := metrics.NewTapCollector(tnb.Registerer)

	tnb.Allocations = bstorage.NewAllocations(cacheMetrics, tnb.DB)
	tnb.Senders = bstorage.NewSenders(tnb.DB)
	tnb.Appraisals = bstorage.NewAppraisals(cacheMetrics, tnb.DB, core.AppraisalCacheSize)
	tnb.RAVs = bstorage.NewRAVs(tnb.DB)

	adapter := checks.NewAdapter(domain, bstorage.NewReceiptIdentities(tnb.DB), tnb.Allocations, tnb.Senders, tnb.Appraisals)
	checker := receipt.NewChecker(tnb.Logger, domain, adapter, core.CheckTimeout)
	aggregator := aggregation.NewAggregator(tnb.Logger, checker,
		aggregation.WithWorkers(core.CheckParallelism),
		aggregation.WithUniquenessRevalidation(core.RevalidateUniqueness),
	)
	tnb.Manager = manager.New(tnb.Logger, tapMetrics, checker, aggregator, stdmap.NewReceipts(), tnb.RAVs, core.CheckParallelism)
}

// Close releases the database.
func (tnb *TapNodeBuilder) Close() error {
	if tnb.DB == nil {
		return nil
	}
	tnb.Logger.Info().Msgf("tap %s node shutting down", tnb.name)
	return tnb.DB.Close()
}
