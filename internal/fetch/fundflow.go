package fetch

import (
	"context"
	"sort"

	"github.com/ternarybob/marketbrief/internal/models"
)

// FundFlow retrieves the capital-flow rankings. Eastmoney is the only
// provider for this category, so there is no fallback chain; each sub-table
// degrades to empty independently and the report itself is never an error.
func (f *Fetcher) FundFlow(ctx context.Context) *models.FundFlowReport {
	report := &models.FundFlowReport{}

	sectors, err := f.eastmoney.SectorFundFlowRank(ctx)
	if err != nil {
		f.logger.Warn().Err(err).Msg("Sector fund flow unavailable")
	} else {
		sort.SliceStable(sectors, func(i, j int) bool {
			return sectors[i].MainInflow > sectors[j].MainInflow
		})
		report.SectorFlow = headFlows(sectors, f.topStocks)
	}

	stocks, err := f.eastmoney.StockFundFlowRank(ctx)
	if err != nil {
		f.logger.Warn().Err(err).Msg("Stock fund flow unavailable")
		return report
	}
	sort.SliceStable(stocks, func(i, j int) bool {
		return stocks[i].MainInflow > stocks[j].MainInflow
	})
	report.StockInflow = headFlows(stocks, f.topStocks)

	// Outflow leaders are the same ranking read from the tail, ascending
	n := f.topStocks
	if n > len(stocks) {
		n = len(stocks)
	}
	outflow := append([]models.FlowRow(nil), stocks[len(stocks)-n:]...)
	sort.SliceStable(outflow, func(i, j int) bool {
		return outflow[i].MainInflow < outflow[j].MainInflow
	})
	report.StockOutflow = outflow

	f.logger.Info().
		Int("sectors", len(report.SectorFlow)).
		Int("inflow", len(report.StockInflow)).
		Int("outflow", len(report.StockOutflow)).
		Msg("Fund flow rankings assembled")

	return report
}
