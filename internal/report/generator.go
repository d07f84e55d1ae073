// Package report sequences the fetch stages into a finished MarketReport.
// Every stage except the base stock quotes degrades on failure; the report
// that comes out always reflects whatever subset of providers was reachable.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/models"
	"github.com/ternarybob/marketbrief/internal/news"
)

// marketFetcher is the category-fetch surface the generator sequences
type marketFetcher interface {
	StockReport(ctx context.Context) (*models.StockReport, error)
	SectorReport(ctx context.Context) *models.SectorReport
	FundFlow(ctx context.Context) *models.FundFlowReport
	Watchlist(ctx context.Context, codes []string) ([]models.StockRow, error)
	WatchSectors(ctx context.Context, specs []common.WatchSectorSpec) []models.WatchSectorResult
}

// newsCollector aggregates the news adapters
type newsCollector interface {
	Collect(ctx context.Context) (*models.NewsReport, error)
}

// reasonAnalyzer attributes move reasons over a populated report
type reasonAnalyzer interface {
	Analyze(ctx context.Context, report *models.MarketReport) models.ReasonMap
}

// Generator assembles one MarketReport per invocation
type Generator struct {
	fetcher   marketFetcher
	collector newsCollector
	analyzer  reasonAnalyzer
	watch     common.WatchConfig
	logger    arbor.ILogger

	now     func() time.Time
	session models.Session
}

type Option func(*Generator)

// WithNewsCollector enables the news collection stage
func WithNewsCollector(collector newsCollector) Option {
	return func(g *Generator) { g.collector = collector }
}

// WithReasonAnalyzer enables the reason attribution stage
func WithReasonAnalyzer(analyzer reasonAnalyzer) Option {
	return func(g *Generator) { g.analyzer = analyzer }
}

// WithWatch supplies the user's watchlist and watched sectors
func WithWatch(watch common.WatchConfig) Option {
	return func(g *Generator) { g.watch = watch }
}

// WithSession forces the session tag instead of deriving it from the clock
func WithSession(session models.Session) Option {
	return func(g *Generator) { g.session = session }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func NewGenerator(fetcher marketFetcher, logger arbor.ILogger, opts ...Option) *Generator {
	g := &Generator{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SessionForTime derives the session tag from the wall clock: morning before
// 13:00 local, afternoon after.
func SessionForTime(t time.Time) models.Session {
	if t.Hour() < 13 {
		return models.SessionMorning
	}
	return models.SessionAfternoon
}

// ProduceAs runs Produce with the session tag forced, regardless of clock
// or construction options.
func (g *Generator) ProduceAs(ctx context.Context, session models.Session) (*models.MarketReport, error) {
	forced := *g
	forced.session = session
	return forced.Produce(ctx)
}

// Produce runs every fetch stage in sequence and returns the assembled
// report. Only total failure of the base stock quotes is an error; every
// other stage leaves its sub-report nil and the run continues.
func (g *Generator) Produce(ctx context.Context) (*models.MarketReport, error) {
	runID := uuid.New().String()[:8]
	started := g.now()

	session := g.session
	if session == "" {
		session = SessionForTime(started)
	}

	log := g.logger
	if log != nil {
		log.Info().Str("run", runID).Str("session", string(session)).Msg("Report generation started")
	}

	report := &models.MarketReport{
		GeneratedAt: started,
		Session:     session,
	}

	stock, err := g.fetcher.StockReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("base stock quotes unavailable: %w", err)
	}
	report.Stock = stock

	report.Sector = g.fetcher.SectorReport(ctx)
	if report.Sector != nil && report.Sector.Empty() {
		report.Sector = nil
		if log != nil {
			log.Warn().Str("run", runID).Msg("Sector data unavailable")
		}
	}

	report.FundFlow = g.fetcher.FundFlow(ctx)
	if report.FundFlow != nil && report.FundFlow.Empty() {
		report.FundFlow = nil
		if log != nil {
			log.Warn().Str("run", runID).Msg("Fund flow data unavailable")
		}
	}

	if len(g.watch.Stocks) > 0 {
		rows, err := g.fetcher.Watchlist(ctx, g.watch.Stocks)
		if err != nil {
			if log != nil {
				log.Warn().Str("run", runID).Err(err).Msg("Watchlist unavailable")
			}
		} else {
			report.Watchlist = rows
		}
	}

	if len(g.watch.Sectors) > 0 {
		report.WatchSectors = g.fetcher.WatchSectors(ctx, g.watch.Sectors)
	}

	if g.collector != nil {
		g.collectNews(ctx, runID, report)
	}

	if g.analyzer != nil {
		report.Reasons = g.analyzer.Analyze(ctx, report)
	}

	if log != nil {
		log.Info().Str("run", runID).
			Str("elapsed", g.now().Sub(started).Round(time.Millisecond).String()).
			Msg("Report generation complete")
	}
	return report, nil
}

func (g *Generator) collectNews(ctx context.Context, runID string, report *models.MarketReport) {
	collected, err := g.collector.Collect(ctx)
	if err != nil {
		if g.logger != nil {
			g.logger.Warn().Str("run", runID).Err(err).Msg("News collection unavailable")
		}
		return
	}
	collected.Matched = news.MatchToSectors(collected, sectorNames(report.Sector))
	report.News = collected
}

// sectorNames flattens the four sector tables into the name list the news
// matcher searches for.
func sectorNames(sector *models.SectorReport) []string {
	if sector == nil {
		return nil
	}
	var names []string
	seen := make(map[string]struct{})
	for _, table := range [][]models.SectorRow{sector.TopGainers, sector.TopLosers, sector.ConceptGainers, sector.ConceptLosers} {
		for _, row := range table {
			if row.Name == "" {
				continue
			}
			if _, dup := seen[row.Name]; dup {
				continue
			}
			seen[row.Name] = struct{}{}
			names = append(names, row.Name)
		}
	}
	return names
}
