package fetch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/marketbrief/internal/models"
	"github.com/ternarybob/marketbrief/internal/providers/sina"
)

// limitThresholdPct is the change percentage treated as a limit move.
// 9.9 rather than 10 to absorb rounding in provider data.
const limitThresholdPct = 9.9

// sinaRankPageSize is how many rows each of the three sina ranking queries pulls
const sinaRankPageSize = 200

// StockReport retrieves the stock ranking tables plus market breadth. This is
// the base category: when both providers fail there is no meaningful report,
// so the error escalates to the caller.
func (f *Fetcher) StockReport(ctx context.Context) (*models.StockReport, error) {
	rows, err := f.stocksFromSina(ctx)
	fromSina := err == nil
	if err != nil {
		f.logger.Warn().Err(err).Msg("Sina stock rankings failed, trying eastmoney")
		rows, err = f.eastmoney.SpotList(ctx)
		if err != nil {
			return nil, fmt.Errorf("all stock quote providers failed: %w", err)
		}
	}

	rows = cleanStocks(rows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("stock quote providers returned no usable rows")
	}

	report := &models.StockReport{}

	byChange := make([]models.StockRow, len(rows))
	copy(byChange, rows)
	sort.SliceStable(byChange, func(i, j int) bool {
		return byChange[i].ChangePct > byChange[j].ChangePct
	})
	report.TopGainers = headStocks(byChange, f.topStocks)

	losers := append([]models.StockRow(nil), byChange[max(0, len(byChange)-f.topStocks):]...)
	sort.SliceStable(losers, func(i, j int) bool {
		return losers[i].ChangePct < losers[j].ChangePct
	})
	report.TopLosers = losers

	byTurnover := make([]models.StockRow, len(rows))
	copy(byTurnover, rows)
	sort.SliceStable(byTurnover, func(i, j int) bool {
		return byTurnover[i].Turnover > byTurnover[j].Turnover
	})
	report.TopTurnover = headStocks(byTurnover, f.topStocks)

	for _, r := range rows {
		switch {
		case r.ChangePct >= limitThresholdPct:
			report.LimitUpCount++
		case r.ChangePct <= -limitThresholdPct:
			report.LimitDownCount++
		}
	}

	if fromSina {
		// The ranking queries only cover the extremes, so exact counts are
		// not available; estimate from a mid-ranked sample.
		f.breadthFromSample(ctx, report)
	} else {
		for _, r := range rows {
			switch {
			case r.ChangePct > 0:
				report.UpCount++
			case r.ChangePct < 0:
				report.DownCount++
			default:
				report.FlatCount++
			}
		}
	}

	f.logger.Info().
		Int("rows", len(rows)).
		Int("up", report.UpCount).
		Int("down", report.DownCount).
		Int("limit_up", report.LimitUpCount).
		Int("limit_down", report.LimitDownCount).
		Bool("breadth_estimated", report.BreadthEstimated).
		Msg("Stock report assembled")

	return report, nil
}

// stocksFromSina unions the three ranking queries (gainers, losers, turnover
// leaders) and dedupes by code, keeping first occurrence.
func (f *Fetcher) stocksFromSina(ctx context.Context) ([]models.StockRow, error) {
	queries := []struct {
		sortField string
		asc       bool
	}{
		{sina.SortChangePct, false},
		{sina.SortChangePct, true},
		{sina.SortAmount, false},
	}

	seen := make(map[string]bool)
	var all []models.StockRow
	for _, q := range queries {
		rows, err := f.sina.RankedStocks(ctx, q.sortField, q.asc, 1, sinaRankPageSize)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("sina ranking query (%s asc=%v) returned empty payload", q.sortField, q.asc)
		}
		for _, r := range rows {
			if r.Code == "" || seen[r.Code] {
				continue
			}
			seen[r.Code] = true
			all = append(all, r)
		}
	}
	return all, nil
}

// cleanStocks drops rows that must not enter the rankings: missing or
// non-positive last price, ST-flagged names, NEEQ (8xx) codes.
func cleanStocks(rows []models.StockRow) []models.StockRow {
	out := make([]models.StockRow, 0, len(rows))
	for _, r := range rows {
		if r.LastPrice <= 0 {
			continue
		}
		if strings.Contains(r.Name, "ST") {
			continue
		}
		if strings.HasPrefix(r.Code, "8") {
			continue
		}
		out = append(out, r)
	}
	return out
}

// breadthFromSample fills the up/down/flat counters from the sampled
// estimator. Failures leave the counters at zero; BreadthEstimated stays set
// so renderers can label the numbers.
func (f *Fetcher) breadthFromSample(ctx context.Context, report *models.StockReport) {
	report.BreadthEstimated = true

	total, err := f.sina.StockCount(ctx)
	if err != nil {
		f.logger.Warn().Err(err).Msg("Breadth estimate unavailable: stock count failed")
		return
	}
	mid, err := f.sina.MidSampleChangePct(ctx, total)
	if err != nil {
		f.logger.Warn().Err(err).Msg("Breadth estimate unavailable: mid sample failed")
		return
	}

	report.UpCount, report.DownCount, report.FlatCount = EstimateBreadth(total, mid)
}

// EstimateBreadth buckets a single mid-ranked change percentage into an
// advancer/decliner split. This is a deliberate approximation: a strongly
// positive median implies roughly 65% advancers, and so on down the buckets.
// Callers must surface the estimate as such, never as an exact count.
func EstimateBreadth(total int, midChangePct float64) (up, down, flat int) {
	if total <= 0 {
		return 0, 0, 0
	}
	flat = total / 50
	switch {
	case midChangePct > 0.1:
		up = int(float64(total) * 0.65)
	case midChangePct > 0:
		up = int(float64(total) * 0.55)
	case midChangePct < -0.1:
		up = int(float64(total) * 0.35)
	case midChangePct < 0:
		up = int(float64(total) * 0.45)
	default:
		// Dead-even sample: split the non-flat remainder, odd one to down
		up = (total - flat) / 2
	}
	down = total - up - flat
	return up, down, flat
}
