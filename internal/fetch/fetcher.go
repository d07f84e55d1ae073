// Package fetch implements the per-category market data fetchers. Each
// category tries its primary provider, falls back to the secondary, and
// degrades to an empty report when both fail. Only the base stock-quote
// category escalates total failure to the caller.
package fetch

import (
	"sort"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
)

// Fetcher bundles the provider clients behind the category operations
type Fetcher struct {
	sina       interfaces.SinaAPI
	eastmoney  interfaces.EastmoneyAPI
	logger     arbor.ILogger
	topSectors int
	topStocks  int
}

// New creates a Fetcher
func New(sina interfaces.SinaAPI, em interfaces.EastmoneyAPI, logger arbor.ILogger, topSectors, topStocks int) *Fetcher {
	if topSectors <= 0 {
		topSectors = 5
	}
	if topStocks <= 0 {
		topStocks = 10
	}
	return &Fetcher{
		sina:       sina,
		eastmoney:  em,
		logger:     logger,
		topSectors: topSectors,
		topStocks:  topStocks,
	}
}

// rankSectors sorts by change percentage and returns the two ends:
// gainers descending, losers ascending.
func rankSectors(rows []models.SectorRow, n int) (gainers, losers []models.SectorRow) {
	if len(rows) == 0 {
		return nil, nil
	}
	sorted := make([]models.SectorRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ChangePct > sorted[j].ChangePct
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	gainers = append([]models.SectorRow(nil), sorted[:n]...)

	losers = append([]models.SectorRow(nil), sorted[len(sorted)-n:]...)
	sort.SliceStable(losers, func(i, j int) bool {
		return losers[i].ChangePct < losers[j].ChangePct
	})
	return gainers, losers
}

func headStocks(rows []models.StockRow, n int) []models.StockRow {
	if n > len(rows) {
		n = len(rows)
	}
	return append([]models.StockRow(nil), rows[:n]...)
}

func headFlows(rows []models.FlowRow, n int) []models.FlowRow {
	if n > len(rows) {
		n = len(rows)
	}
	return append([]models.FlowRow(nil), rows[:n]...)
}
