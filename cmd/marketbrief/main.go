package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/fetch"
	"github.com/ternarybob/marketbrief/internal/httpclient"
	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
	"github.com/ternarybob/marketbrief/internal/news"
	"github.com/ternarybob/marketbrief/internal/providers/eastmoney"
	"github.com/ternarybob/marketbrief/internal/providers/sina"
	"github.com/ternarybob/marketbrief/internal/reasons"
	"github.com/ternarybob/marketbrief/internal/render"
	"github.com/ternarybob/marketbrief/internal/report"
	"github.com/ternarybob/marketbrief/internal/scheduler"
	"github.com/ternarybob/marketbrief/internal/server"
)

// configPaths allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	runSchedule  = flag.Bool("schedule", false, "Run on the session cron schedule instead of once")
	runServe     = flag.Bool("serve", false, "Serve rendered reports over HTTP")
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	noNews       = flag.Bool("no-news", false, "Skip news collection")
	sessionFlag  = flag.String("session", "", "Force session tag: morning or afternoon")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("MarketBrief version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence: config -> CLI overrides -> logger -> banner
	if len(configFiles) == 0 {
		if _, err := os.Stat("marketbrief.toml"); err == nil {
			configFiles = append(configFiles, "marketbrief.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	if *serverPort != 0 {
		config.Server.Port = *serverPort
	}
	if *serverHost != "" {
		config.Server.Host = *serverHost
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("log_level", config.Logging.Level).
		Msg("Application configuration loaded")

	generator := buildGenerator(config, logger, !*noNews && config.News.Enabled)

	switch selectMode(*runSchedule, *runServe) {
	case modeSchedule:
		runScheduled(config, logger, generator, *runServe)
	case modeServe:
		runServer(config, logger)
	default:
		runOnce(config, logger, generator, models.Session(*sessionFlag))
	}
}

type runMode int

const (
	modeOnce runMode = iota
	modeServe
	modeSchedule
)

// selectMode resolves the flag combination. -schedule wins over -serve so the
// viewer runs alongside the scheduler instead of replacing it.
func selectMode(schedule, serve bool) runMode {
	switch {
	case schedule:
		return modeSchedule
	case serve:
		return modeServe
	default:
		return modeOnce
	}
}

// buildGenerator wires the provider clients, fetchers, news sources and the
// reason engine into a report generator.
func buildGenerator(config *common.Config, logger arbor.ILogger, collectNews bool) *report.Generator {
	httpClient := httpclient.New(httpclient.Options{
		Timeout:           config.Fetch.Timeout(),
		BypassSystemProxy: true,
	})

	sinaClient := sina.NewClient(
		sina.WithHTTPClient(httpClient),
		sina.WithLogger(logger),
	)
	emClient := eastmoney.NewClient(
		eastmoney.WithHTTPClient(httpClient),
		eastmoney.WithLogger(logger),
		eastmoney.WithThrottle(config.Fetch.Throttle()),
	)

	fetcher := fetch.New(sinaClient, emClient, logger, config.Fetch.TopSectors, config.Fetch.TopStocks)

	opts := []report.Option{
		report.WithWatch(config.Watch),
	}

	if collectNews {
		sources := []interfaces.NewsSource{
			news.NewEastmoneySource(httpClient, logger),
			news.NewSinaSource(httpClient, logger),
			news.NewJin10Source(httpClient, logger),
			news.NewCLSSource(httpClient, logger),
		}
		if len(config.News.RSSFeeds) > 0 {
			sources = append(sources, news.NewRSSSource(config.News.RSSFeeds, httpClient, logger))
		}
		collector := news.NewCollector(logger, sources, news.WithMaxItems(config.News.MaxItems))
		opts = append(opts, report.WithNewsCollector(collector))
	}

	engine, err := reasons.New(
		reasons.WithLimitPool(emClient),
		reasons.WithClassification(emClient),
		reasons.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize reason engine")
		os.Exit(1)
	}
	opts = append(opts, report.WithReasonAnalyzer(engine))

	return report.NewGenerator(fetcher, logger, opts...)
}

// runOnce produces a single report, renders it to the terminal and saves the
// markdown artifact. Total failure of the base stock quotes ends the process
// with a non-zero status.
func runOnce(config *common.Config, logger arbor.ILogger, generator *report.Generator, session models.Session) {
	ctx := context.Background()

	marketReport, err := produce(ctx, generator, session)
	if err != nil {
		logger.Error().Err(err).Msg("Report generation failed")
		os.Exit(1)
	}

	render.Terminal(os.Stdout, marketReport)

	path, err := render.Save(marketReport, config.Report.OutputDir)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to save report artifact")
		os.Exit(1)
	}
	logger.Info().Str("path", path).Msg("Report saved")
}

func produce(ctx context.Context, generator *report.Generator, session models.Session) (*models.MarketReport, error) {
	switch session {
	case models.SessionMorning, models.SessionAfternoon, models.SessionManual:
		return generator.ProduceAs(ctx, session)
	case "":
		return generator.Produce(ctx)
	default:
		return nil, fmt.Errorf("unknown session %q", session)
	}
}

// runScheduled fires a report run at each configured session time until
// interrupted.
func runScheduled(config *common.Config, logger arbor.ILogger, generator *report.Generator, serve bool) {
	svc := scheduler.NewService(func(session models.Session) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		marketReport, err := generator.ProduceAs(ctx, session)
		if err != nil {
			logger.Error().Err(err).Str("session", string(session)).Msg("Scheduled report generation failed")
			return
		}
		if path, err := render.Save(marketReport, config.Report.OutputDir); err != nil {
			logger.Error().Err(err).Msg("Failed to save report artifact")
		} else {
			logger.Info().Str("path", path).Msg("Report saved")
		}
	}, logger)

	if err := svc.Start(config.Schedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
		os.Exit(1)
	}
	defer svc.Stop()

	if serve {
		defer startViewer(config, logger)()
	}

	logger.Info().
		Str("morning", config.Schedule.Morning).
		Str("afternoon", config.Schedule.Afternoon).
		Msg("Scheduler running - Press Ctrl+C to stop")
	waitForInterrupt(logger)
}

// runServer serves the rendered artifacts over HTTP until interrupted
func runServer(config *common.Config, logger arbor.ILogger) {
	shutdown := startViewer(config, logger)
	waitForInterrupt(logger)
	shutdown()
}

// startViewer starts the report viewer in the background and returns the
// shutdown func.
func startViewer(config *common.Config, logger arbor.ILogger) func() {
	srv := server.New(config, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
			os.Exit(1)
		}
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Report viewer ready - Press Ctrl+C to stop")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Server shutdown failed")
		}
	}
}

func waitForInterrupt(logger arbor.ILogger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("Interrupt signal received")
}
