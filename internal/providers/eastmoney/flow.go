package eastmoney

import (
	"context"

	"github.com/ternarybob/marketbrief/internal/models"
)

// SectorFundFlowRank retrieves today's sector-level main-capital flow ranking,
// net inflow descending.
func (c *Client) SectorFundFlowRank(ctx context.Context) ([]models.FlowRow, error) {
	diff, err := c.clist(ctx, fsIndustryBoards, "f62", "f12,f14,f3,f62,f184", 1, 500)
	if err != nil {
		return nil, err
	}
	rows := make([]models.FlowRow, 0, len(diff))
	for _, d := range diff {
		rows = append(rows, models.FlowRow{
			Name:          asString(d["f14"]),
			ChangePct:     asFloat(d["f3"]),
			MainInflow:    asFloat(d["f62"]),
			MainInflowPct: asFloat(d["f184"]),
		})
	}
	return rows, nil
}

// StockFundFlowRank retrieves today's stock-level main-capital flow ranking,
// net inflow descending. The outflow leaderboard is this same ranking read
// from the tail, so one call serves both tables.
func (c *Client) StockFundFlowRank(ctx context.Context) ([]models.FlowRow, error) {
	diff, err := c.clist(ctx, fsAllAShares, "f62", "f12,f14,f3,f62,f184", 1, 5000)
	if err != nil {
		return nil, err
	}
	rows := make([]models.FlowRow, 0, len(diff))
	for _, d := range diff {
		rows = append(rows, models.FlowRow{
			Code:          asString(d["f12"]),
			Name:          asString(d["f14"]),
			ChangePct:     asFloat(d["f3"]),
			MainInflow:    asFloat(d["f62"]),
			MainInflowPct: asFloat(d["f184"]),
		})
	}
	return rows, nil
}
