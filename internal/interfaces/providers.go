// Package interfaces defines the contracts between the fetch/news/reason
// layers and the concrete provider clients, so each layer can be exercised
// against stubs.
package interfaces

import (
	"context"

	"github.com/ternarybob/marketbrief/internal/models"
	"github.com/ternarybob/marketbrief/internal/providers/eastmoney"
)

// SinaAPI is the operation surface of the Sina Finance client consumed by the
// category fetchers (primary provider for sectors, stocks and breadth).
type SinaAPI interface {
	IndustryBoards(ctx context.Context) ([]models.SectorRow, error)
	ConceptBoards(ctx context.Context) ([]models.SectorRow, error)
	RankedStocks(ctx context.Context, sortField string, asc bool, page, num int) ([]models.StockRow, error)
	StockCount(ctx context.Context) (int, error)
	MidSampleChangePct(ctx context.Context, total int) (float64, error)
}

// EastmoneyAPI is the operation surface of the eastmoney client consumed by
// the category fetchers (secondary provider for sectors and stocks, sole
// provider for fund flow and watch data).
type EastmoneyAPI interface {
	SpotList(ctx context.Context) ([]models.StockRow, error)
	IndustryBoards(ctx context.Context) ([]models.SectorRow, error)
	ConceptBoards(ctx context.Context) ([]models.SectorRow, error)
	SectorFundFlowRank(ctx context.Context) ([]models.FlowRow, error)
	StockFundFlowRank(ctx context.Context) ([]models.FlowRow, error)
	QuoteList(ctx context.Context, codes []string) ([]models.StockRow, error)
	FlowList(ctx context.Context, codes []string) (map[string]eastmoney.FlowFields, error)
	BoardQuote(ctx context.Context, bkCode string) (models.WatchSectorOverview, error)
	BoardConstituents(ctx context.Context, bkCode string) ([]models.StockRow, error)
}

// LimitPoolLookup resolves the same-day limit-up pool. The reason engine
// treats failures as an empty enrichment set.
type LimitPoolLookup interface {
	LimitUpPool(ctx context.Context, date string) (map[string]models.LimitEvent, error)
}

// ClassificationLookup resolves stock codes to industry/concept data.
// Per-code failures are skipped, never fatal.
type ClassificationLookup interface {
	OrgClassification(ctx context.Context, codes []string) (map[string]models.Classification, error)
	CompanyProfile(ctx context.Context, code string) (string, error)
}
