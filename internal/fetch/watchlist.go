package fetch

import (
	"context"

	"github.com/ternarybob/marketbrief/internal/models"
)

// Watchlist retrieves live quotes plus flow enrichment for the configured
// stock codes. The result preserves the configured order, not the provider's
// response order; codes the provider does not know are skipped.
func (f *Fetcher) Watchlist(ctx context.Context, codes []string) ([]models.StockRow, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	quotes, err := f.eastmoney.QuoteList(ctx, codes)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]models.StockRow, len(quotes))
	for _, q := range quotes {
		if q.Code != "" {
			byCode[q.Code] = q
		}
	}

	// Flow fields are enrichment: a failure leaves plain quotes
	flows, err := f.eastmoney.FlowList(ctx, codes)
	if err != nil {
		f.logger.Warn().Err(err).Msg("Watchlist flow enrichment unavailable")
	} else {
		for code, flow := range flows {
			if row, ok := byCode[code]; ok {
				row.MainInflow = flow.MainInflow
				row.MainInflowPct = flow.MainInflowPct
				byCode[code] = row
			}
		}
	}

	rows := make([]models.StockRow, 0, len(codes))
	for _, code := range codes {
		if row, ok := byCode[code]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
