// Package models defines the report data model shared by fetchers, the news
// collector, the reason engine and the renderers. A MarketReport is built once
// per invocation and never mutated after handoff to the renderers.
package models

import "time"

// Session identifies which trading session a report covers
type Session string

const (
	SessionMorning   Session = "morning"
	SessionAfternoon Session = "afternoon"
	SessionManual    Session = "manual"
)

// SectorRow is one row of a sector ranking table
type SectorRow struct {
	Name          string  `json:"name"`
	StockCount    int     `json:"stock_count,omitempty"`
	ChangePct     float64 `json:"change_pct"`
	LeadStock     string  `json:"lead_stock,omitempty"`
	LeadChangePct float64 `json:"lead_change_pct,omitempty"`
	MainInflow    float64 `json:"main_inflow,omitempty"`
}

// SectorReport holds the four sector ranking tables.
// An empty table means the data was unavailable, not that nothing moved.
type SectorReport struct {
	TopGainers     []SectorRow `json:"top_gainers"`
	TopLosers      []SectorRow `json:"top_losers"`
	ConceptGainers []SectorRow `json:"concept_gainers"`
	ConceptLosers  []SectorRow `json:"concept_losers"`
}

// Empty reports whether every table is empty
func (r *SectorReport) Empty() bool {
	return len(r.TopGainers) == 0 && len(r.TopLosers) == 0 &&
		len(r.ConceptGainers) == 0 && len(r.ConceptLosers) == 0
}

// StockRow is one row of a stock ranking or watchlist table
type StockRow struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	LastPrice     float64 `json:"last_price"`
	ChangePct     float64 `json:"change_pct"`
	ChangeAmt     float64 `json:"change_amt,omitempty"`
	Volume        float64 `json:"volume,omitempty"`
	Turnover      float64 `json:"turnover,omitempty"`
	TurnoverRate  float64 `json:"turnover_rate,omitempty"`
	Amplitude     float64 `json:"amplitude,omitempty"`
	High          float64 `json:"high,omitempty"`
	Low           float64 `json:"low,omitempty"`
	Open          float64 `json:"open,omitempty"`
	PrevClose     float64 `json:"prev_close,omitempty"`
	MainInflow    float64 `json:"main_inflow,omitempty"`
	MainInflowPct float64 `json:"main_inflow_pct,omitempty"`
}

// StockReport holds stock rankings plus market breadth counters
type StockReport struct {
	TopGainers  []StockRow `json:"top_gainers"`
	TopLosers   []StockRow `json:"top_losers"`
	TopTurnover []StockRow `json:"top_turnover"`

	LimitUpCount   int `json:"limit_up_count"`
	LimitDownCount int `json:"limit_down_count"`
	UpCount        int `json:"up_count"`
	DownCount      int `json:"down_count"`
	FlatCount      int `json:"flat_count"`

	// BreadthEstimated is true when the up/down/flat counts come from the
	// sampled estimator rather than an exact count over the full snapshot.
	BreadthEstimated bool `json:"breadth_estimated,omitempty"`
}

// FlowRow is one row of a capital-flow ranking table
type FlowRow struct {
	Code          string  `json:"code,omitempty"` // empty for sector rows
	Name          string  `json:"name"`
	ChangePct     float64 `json:"change_pct,omitempty"`
	MainInflow    float64 `json:"main_inflow"`
	MainInflowPct float64 `json:"main_inflow_pct,omitempty"`
}

// FundFlowReport holds the capital-flow ranking tables.
// StockOutflow is the inflow ranking read from the other end, not a separate query.
type FundFlowReport struct {
	SectorFlow   []FlowRow `json:"sector_flow"`
	StockInflow  []FlowRow `json:"stock_inflow"`
	StockOutflow []FlowRow `json:"stock_outflow"`
}

// Empty reports whether every table is empty
func (r *FundFlowReport) Empty() bool {
	return len(r.SectorFlow) == 0 && len(r.StockInflow) == 0 && len(r.StockOutflow) == 0
}

// WatchSectorOverview summarizes a watched sector's own quote and internals
type WatchSectorOverview struct {
	ChangePct    float64 `json:"change_pct"`
	ChangeAmt    float64 `json:"change_amt"`
	Turnover     float64 `json:"turnover"`
	MainInflow   float64 `json:"main_inflow"`
	UpCount      int     `json:"up_count"`
	DownCount    int     `json:"down_count"`
	FlatCount    int     `json:"flat_count"`
	LimitUpCount int     `json:"limit_up_count"`
	StockCount   int     `json:"stock_count"`
}

// WatchSectorResult holds one watched sector with its constituent detail
type WatchSectorResult struct {
	Name     string              `json:"name"`
	Code     string              `json:"code"`
	Overview WatchSectorOverview `json:"overview"`
	Stocks   []StockRow          `json:"stocks"`
}

// MarketReport is the aggregate root. Nil sub-reports mean that stage failed
// and degraded; renderers must show "unavailable" rather than zero movement.
type MarketReport struct {
	GeneratedAt  time.Time           `json:"generated_at"`
	Session      Session             `json:"session"`
	Sector       *SectorReport       `json:"sector,omitempty"`
	Stock        *StockReport        `json:"stock,omitempty"`
	FundFlow     *FundFlowReport     `json:"fund_flow,omitempty"`
	Watchlist    []StockRow          `json:"watchlist,omitempty"`
	WatchSectors []WatchSectorResult `json:"watch_sectors,omitempty"`
	News         *NewsReport         `json:"news,omitempty"`
	Reasons      ReasonMap           `json:"reasons,omitempty"`
}

// ArtifactName returns the persisted artifact key for this report: date + session
func (r *MarketReport) ArtifactName() string {
	return r.GeneratedAt.Format("2006-01-02") + "_" + string(r.Session)
}
