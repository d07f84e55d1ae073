package fetch

import (
	"context"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/models"
)

// WatchSectors retrieves each configured sector's own quote plus constituent
// detail. A failed sector is skipped, the rest still return. The sector's
// main inflow is the sum over its constituents, which is more reliable than
// the board-level flow field.
func (f *Fetcher) WatchSectors(ctx context.Context, specs []common.WatchSectorSpec) []models.WatchSectorResult {
	var results []models.WatchSectorResult

	for _, spec := range specs {
		overview, err := f.eastmoney.BoardQuote(ctx, spec.Code)
		if err != nil {
			f.logger.Warn().Str("sector", spec.Name).Err(err).Msg("Watch sector quote failed, skipping")
			continue
		}

		stocks, err := f.eastmoney.BoardConstituents(ctx, spec.Code)
		if err != nil {
			f.logger.Warn().Str("sector", spec.Name).Err(err).Msg("Watch sector constituents failed, skipping")
			continue
		}

		var totalFlow float64
		for _, s := range stocks {
			totalFlow += s.MainInflow
			switch {
			case s.ChangePct > 0:
				overview.UpCount++
			case s.ChangePct < 0:
				overview.DownCount++
			default:
				overview.FlatCount++
			}
			if s.ChangePct >= limitThresholdPct {
				overview.LimitUpCount++
			}
		}
		overview.MainInflow = totalFlow
		overview.StockCount = len(stocks)

		f.logger.Info().
			Str("sector", spec.Name).
			Int("stocks", len(stocks)).
			Int("up", overview.UpCount).
			Int("down", overview.DownCount).
			Msg("Watch sector assembled")

		results = append(results, models.WatchSectorResult{
			Name:     spec.Name,
			Code:     spec.Code,
			Overview: overview,
			Stocks:   stocks,
		})
	}

	return results
}
