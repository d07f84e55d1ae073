package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/models"
)

type stubFetcher struct {
	stock        *models.StockReport
	stockErr     error
	sector       *models.SectorReport
	fundFlow     *models.FundFlowReport
	watchlist    []models.StockRow
	watchlistErr error
	watchSectors []models.WatchSectorResult
}

func (s *stubFetcher) StockReport(_ context.Context) (*models.StockReport, error) {
	return s.stock, s.stockErr
}

func (s *stubFetcher) SectorReport(_ context.Context) *models.SectorReport {
	if s.sector == nil {
		return &models.SectorReport{}
	}
	return s.sector
}

func (s *stubFetcher) FundFlow(_ context.Context) *models.FundFlowReport {
	if s.fundFlow == nil {
		return &models.FundFlowReport{}
	}
	return s.fundFlow
}

func (s *stubFetcher) Watchlist(_ context.Context, _ []string) ([]models.StockRow, error) {
	return s.watchlist, s.watchlistErr
}

func (s *stubFetcher) WatchSectors(_ context.Context, _ []common.WatchSectorSpec) []models.WatchSectorResult {
	return s.watchSectors
}

type stubCollector struct {
	report *models.NewsReport
	err    error
}

func (s *stubCollector) Collect(_ context.Context) (*models.NewsReport, error) {
	return s.report, s.err
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(_ context.Context, _ *models.MarketReport) models.ReasonMap {
	return models.ReasonMap{"sector:半导体": "测试原因"}
}

func baseStock() *models.StockReport {
	return &models.StockReport{
		TopGainers: []models.StockRow{{Code: "300274", Name: "阳光电源", LastPrice: 80, ChangePct: 5}},
		UpCount:    2800, DownCount: 1900, FlatCount: 300,
	}
}

func TestProduceFullReport(t *testing.T) {
	fetcher := &stubFetcher{
		stock: baseStock(),
		sector: &models.SectorReport{
			TopGainers: []models.SectorRow{{Name: "半导体", ChangePct: 3.2}},
			TopLosers:  []models.SectorRow{{Name: "半导体", ChangePct: 3.2}, {Name: "银行", ChangePct: -1.1}},
		},
		fundFlow: &models.FundFlowReport{
			SectorFlow: []models.FlowRow{{Name: "半导体", MainInflow: 1.2e9}},
		},
		watchlist: []models.StockRow{{Code: "600519", Name: "贵州茅台"}},
	}
	collector := &stubCollector{report: &models.NewsReport{Items: []models.NewsItem{
		{Title: "国务院发布半导体产业扶持新政策", Source: "test", PublishTime: time.Now()},
	}}}

	gen := NewGenerator(fetcher, nil,
		WithNewsCollector(collector),
		WithReasonAnalyzer(stubAnalyzer{}),
		WithWatch(common.WatchConfig{Stocks: []string{"600519"}}),
		WithSession(models.SessionManual),
	)

	report, err := gen.Produce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.SessionManual, report.Session)
	assert.NotNil(t, report.Stock)
	assert.NotNil(t, report.Sector)
	assert.NotNil(t, report.FundFlow)
	assert.Len(t, report.Watchlist, 1)

	require.NotNil(t, report.News)
	require.Contains(t, report.News.Matched, "半导体", "collected news is matched against sector names")
	assert.Equal(t, "测试原因", report.Reasons["sector:半导体"])
}

func TestProduceStockFailureIsFatal(t *testing.T) {
	gen := NewGenerator(&stubFetcher{stockErr: fmt.Errorf("both providers down")}, nil)

	_, err := gen.Produce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base stock quotes unavailable")
}

func TestProduceDegradedStagesLeaveNilSubReports(t *testing.T) {
	gen := NewGenerator(&stubFetcher{stock: baseStock()}, nil,
		WithNewsCollector(&stubCollector{err: fmt.Errorf("all sources down")}),
		WithWatch(common.WatchConfig{Stocks: []string{"600519"}}),
	)
	gen.fetcher.(*stubFetcher).watchlistErr = fmt.Errorf("quote service down")

	report, err := gen.Produce(context.Background())
	require.NoError(t, err)

	assert.Nil(t, report.Sector, "an all-empty sector report is recorded as unavailable")
	assert.Nil(t, report.FundFlow)
	assert.Nil(t, report.News)
	assert.Nil(t, report.Watchlist)
	assert.Nil(t, report.Reasons)
}

func TestSessionForTime(t *testing.T) {
	morning := time.Date(2026, 8, 28, 11, 35, 0, 0, time.Local)
	afternoon := time.Date(2026, 8, 28, 15, 5, 0, 0, time.Local)

	assert.Equal(t, models.SessionMorning, SessionForTime(morning))
	assert.Equal(t, models.SessionAfternoon, SessionForTime(afternoon))
}

func TestProduceAsForcesSession(t *testing.T) {
	at := time.Date(2026, 8, 28, 9, 45, 0, 0, time.Local)
	gen := NewGenerator(&stubFetcher{stock: baseStock()}, nil,
		WithClock(func() time.Time { return at }),
	)

	report, err := gen.ProduceAs(context.Background(), models.SessionAfternoon)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAfternoon, report.Session, "the forced tag beats the clock")
}

func TestProduceDerivesSessionFromClock(t *testing.T) {
	at := time.Date(2026, 8, 28, 9, 45, 0, 0, time.Local)
	gen := NewGenerator(&stubFetcher{stock: baseStock()}, nil,
		WithClock(func() time.Time { return at }),
	)

	report, err := gen.Produce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SessionMorning, report.Session)
	assert.Equal(t, at, report.GeneratedAt)
	assert.Equal(t, "2026-08-28_morning", report.ArtifactName())
}
