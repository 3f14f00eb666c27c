package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ctrmdash/config"
	"ctrmdash/internal/api"
	"ctrmdash/internal/coordinator"
	"ctrmdash/internal/memorystore"
	"ctrmdash/internal/metrics"
	"ctrmdash/internal/render"
	"ctrmdash/internal/seriesgen"
	"ctrmdash/internal/stream"
	"ctrmdash/internal/viewcache"
	"ctrmdash/internal/views"
	"ctrmdash/pkg/storage/postgres"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Names of supporting components in banners.
const (
	ComponentMetrics = "metrics"
	ComponentCache   = "view cache"
	ComponentStream  = "event stream"
	ComponentArchive = "price archive"
)

type Option func(*options)

type options struct {
	now    func() time.Time
	checks map[string]ComponentCheck
}

// WithClock replaces time.Now for the dataset anchor and trade dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithComponentCheck replaces the init check of a view component.
func WithComponentCheck(component string, check ComponentCheck) Option {
	return func(o *options) { o.checks[component] = check }
}

// Dashboard is the assembled application. Optional components are nil when
// they failed to initialise; InitErr holds those failures.
type Dashboard struct {
	Config      *config.Config
	Logger      *zap.Logger
	Dataset     seriesgen.Dataset
	Store       *memorystore.Store
	Coordinator *coordinator.Coordinator
	Views       *views.Views
	Metrics     *metrics.Metrics
	Cache       *viewcache.Cache
	Hub         *stream.Hub
	Archive     *postgres.PostgresClient
	Server      *api.Server
	InitErr     error

	now func() time.Time
}

// SeriesConfig converts the dashboard section into generator parameters.
func SeriesConfig(d config.DashboardConfig, now time.Time) (seriesgen.Config, error) {
	anchor, err := d.AnchorTime(now)
	if err != nil {
		return seriesgen.Config{}, err
	}
	c := seriesgen.Config{
		Seed:         d.Seed,
		Anchor:       anchor,
		Amplitude:    d.Amplitude,
		Drift:        d.Drift,
		Days:         d.SeriesDays,
		ForecastDays: d.ForecastDays,
		ForecastBand: d.ForecastBand,
		GridRows:     d.GridRows,
		GridCols:     d.GridCols,
	}
	for _, b := range d.Benchmarks {
		c.Benchmarks = append(c.Benchmarks, seriesgen.Benchmark{Name: b.Name, Base: b.Base})
	}
	return c, c.Validate()
}

// initStep runs fn, turning a panic into an error.
func initStep(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", name, r)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Build initialises every component. The sample data, store and coordinator
// are required; any other component that fails is reported through a banner
// and left out while the rest keep working.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Dashboard, error) {
	o := options{now: time.Now, checks: defaultChecks()}
	for _, opt := range opts {
		opt(&o)
	}

	d := &Dashboard{Config: cfg, Logger: logger, now: o.now}

	// Required core
	err := initStep("sample data", func() error {
		sc, err := SeriesConfig(cfg.Dashboard, o.now())
		if err != nil {
			return err
		}
		d.Dataset, err = seriesgen.Generate(sc)
		if err != nil {
			return err
		}
		d.Store = memorystore.NewSeeded(d.Dataset)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dashboard: %w", err)
	}

	var failures []string
	fail := func(component string, err error) {
		d.InitErr = multierr.Append(d.InitErr, err)
		failures = append(failures, component)
		logger.Error("component failed to initialize", zap.String("target", component), zap.Error(err))
	}

	if err := initStep(ComponentMetrics, func() error {
		d.Metrics = metrics.New()
		return nil
	}); err != nil {
		fail(ComponentMetrics, err)
	}

	coordCfg := coordinator.Config{
		ToastDuration: cfg.Dashboard.ToastDuration,
		Now:           o.now,
	}
	if d.Metrics != nil {
		coordCfg.Recorder = d.Metrics
	}
	d.Coordinator = coordinator.New(logger, d.Store, coordCfg)

	if err := initStep(ComponentCache, func() error {
		var observer viewcache.LookupObserver
		if d.Metrics != nil {
			observer = d.Metrics.CacheLookup
		}
		var err error
		d.Cache, err = viewcache.New(cfg.Dashboard.CacheMaxCost, cfg.Dashboard.CacheTTL, observer)
		return err
	}); err != nil {
		fail(ComponentCache, err)
	}

	d.Views = views.New(logger, d.Store, d.Coordinator, d.Cache)

	for _, component := range componentOrder {
		check := o.checks[component]
		if check == nil {
			continue
		}
		if err := initStep(component, func() error { return check(d.Store) }); err != nil {
			fail(component, err)
			d.Views.MarkUnavailable(component)
		}
	}

	if err := initStep(ComponentStream, func() error {
		d.Hub = stream.NewHub(logger, d.Coordinator, stream.Config{
			Buffer:        cfg.Dashboard.SubscriberBuffer,
			AllowedOrigin: cfg.Server.CORSOrigin,
		})
		return nil
	}); err != nil {
		fail(ComponentStream, err)
	}

	if cfg.Postgres.Enabled {
		if err := initStep(ComponentArchive, func() error {
			var err error
			d.Archive, err = postgres.InitializeAndMigratePriceRecord(ctx, cfg.Postgres, cfg.Log.Environment)
			return err
		}); err != nil {
			fail(ComponentArchive, err)
		}
	}

	if d.Archive != nil {
		d.Views.AddProbe(ComponentArchive, d.Archive.IsHealthy)
	}

	for _, component := range failures {
		if !isViewComponent(component) {
			d.Views.AddBanner(render.NewBanner(component))
		}
		if d.Metrics != nil {
			d.Metrics.InitFailed(component)
		}
	}

	apiOpts := api.Options{
		CORSOrigin: cfg.Server.CORSOrigin,
		Mode:       cfg.Server.Mode,
	}
	if d.Archive != nil {
		apiOpts.History = d.Archive
	}
	d.Server = api.NewServer(d.Views, d.Coordinator, d.Hub, d.Metrics, logger, apiOpts)

	logger.Info("dashboard initialized",
		zap.Int("trades", d.Store.Trades.Count()),
		zap.Strings("benchmarks", d.Dataset.Benchmarks),
		zap.Bool("degraded", d.InitErr != nil))
	return d, nil
}

func isViewComponent(name string) bool {
	for _, c := range componentOrder {
		if c == name {
			return true
		}
	}
	return false
}

// Run starts the event loop, the trade worker, the daily archive job and
// the HTTP server, and blocks until ctx ends or the server fails.
func (d *Dashboard) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = d.Coordinator.Run(ctx)
	}()

	buffer := d.Config.Dashboard.SubscriberBuffer
	if buffer <= 0 {
		buffer = 32
	}
	events, unsubscribe := d.Coordinator.Subscribe(buffer)
	defer unsubscribe()
	d.StartTradeWorker(events)

	if d.Archive != nil {
		scheduler := &MidnightScheduler{Job: d.archiveDataset, Now: d.now}
		scheduler.Start(ctx)
	}

	srv := &http.Server{
		Addr:              d.Config.Server.Addr,
		Handler:           d.Server,
		ReadHeaderTimeout: d.Config.Server.ReadTimeout,
	}
	srvErr := make(chan error, 1)
	go func() {
		d.Logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-srvErr:
		if ok {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	timeout := d.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	if d.Hub != nil {
		d.Hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		runErr = multierr.Append(runErr, fmt.Errorf("http shutdown: %w", err))
	}
	cancel()
	<-loopDone

	if d.Cache != nil {
		d.Cache.Close()
	}
	if d.Archive != nil {
		if err := d.Archive.Close(); err != nil {
			runErr = multierr.Append(runErr, err)
		}
	}
	d.Logger.Info("dashboard stopped")
	return runErr
}

// StartTradeWorker keeps the trade gauge current from coordinator events.
func (d *Dashboard) StartTradeWorker(events <-chan coordinator.Event) {
	if d.Metrics != nil {
		d.Metrics.SetTrades(d.Store.Trades.Count())
	}
	go func() {
		for ev := range events {
			if ev.Type != coordinator.EventTradesChanged {
				continue
			}
			count := d.Store.Trades.Count()
			if d.Metrics != nil {
				d.Metrics.SetTrades(count)
			}
			d.Logger.Info("current trades", zap.Int("count", count))
		}
	}()
}

func (d *Dashboard) archiveDataset(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if days := d.Config.Postgres.RetentionDays; days > 0 {
		now := d.now
		if now == nil {
			now = time.Now
		}
		cutoff := now().UTC().AddDate(0, 0, -days)
		deleted, err := d.Archive.DeletePricesBefore(ctx, cutoff)
		if err != nil {
			d.Logger.Warn("failed to prune price archive", zap.Error(err))
		} else {
			d.Logger.Info("price archive pruned", zap.Int64("deleted", deleted), zap.Time("before", cutoff))
		}
	}

	n, err := d.Archive.ArchiveDataset(ctx, d.Config.Dashboard.Seed, d.Dataset)
	if err != nil {
		d.Logger.Warn("failed to archive price series", zap.Error(err))
		return
	}
	d.Logger.Info("price series archived", zap.Int64("inserted", n))
}

// StartDashboard builds the dashboard from cfg and runs it until ctx ends.
func StartDashboard(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	d, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return d.Run(ctx)
}
