// Package reasons derives short "why did this move" annotations for sectors
// and stocks by correlating rankings against classification data, the
// same-day limit-up pool and the collected news stream. The attribution is
// heuristic and best-effort: a miss is silently omitted, never an error.
package reasons

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
)

const (
	// maxBulkCodes caps the bulk classification query
	maxBulkCodes = 50
	// maxProfileCodes caps the per-code profile refinement pass
	maxProfileCodes = 30
	// maxConceptKeywords caps how many concept keywords are searched per stock
	maxConceptKeywords = 5

	// maxReasonRunes is the hard cap on a stored reason
	maxReasonRunes = 30
	// maxTitleRunes is the cap on a single reduced news title clause
	maxTitleRunes = 18
	// minClauseRunes is the informativeness threshold below which a lone
	// clause gets a news-by-name fallback appended
	minClauseRunes = 6
)

//go:embed keywords.yaml
var keywordsYAML []byte

// corporateSuffixes are dropped from a stock display name to improve news
// match recall when the full name finds nothing
var corporateSuffixes = []string{"股份", "科技", "集团", "电子", "新能", "智能"}

// Engine attributes move reasons over an assembled report. The enrichment
// lookups are injected so tests can run the pipeline hermetically.
type Engine struct {
	pool     interfaces.LimitPoolLookup
	classify interfaces.ClassificationLookup
	logger   arbor.ILogger

	sectorKeywords map[string][]string
}

type Option func(*Engine)

func WithLimitPool(pool interfaces.LimitPoolLookup) Option {
	return func(e *Engine) { e.pool = pool }
}

func WithClassification(classify interfaces.ClassificationLookup) Option {
	return func(e *Engine) { e.classify = classify }
}

func WithLogger(logger arbor.ILogger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates the reason engine. The embedded keyword-expansion table must
// parse; a broken table is a build artifact error, not a runtime condition.
func New(opts ...Option) (*Engine, error) {
	keywords := make(map[string][]string)
	if err := yaml.Unmarshal(keywordsYAML, &keywords); err != nil {
		return nil, fmt.Errorf("parse sector keyword table: %w", err)
	}

	e := &Engine{sectorKeywords: keywords}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Analyze produces the reason map for a report. The report itself is never
// mutated; first-match-wins holds per key across the whole pipeline.
func (e *Engine) Analyze(ctx context.Context, report *models.MarketReport) models.ReasonMap {
	reasons := make(models.ReasonMap)
	if report == nil {
		return reasons
	}

	var news []models.NewsItem
	if report.News != nil {
		news = report.News.Items
	}

	pool := e.limitPool(ctx, report.GeneratedAt.Format("20060102"))
	classifications := e.classifications(ctx, collectCodes(report))

	e.sectorReasons(reasons, report, news)
	e.stockReasons(reasons, report, news, pool, classifications)

	if e.logger != nil {
		e.logger.Info().Int("reasons", len(reasons)).Msg("Reason attribution complete")
	}
	return reasons
}

func (e *Engine) limitPool(ctx context.Context, date string) map[string]models.LimitEvent {
	if e.pool == nil {
		return nil
	}
	pool, err := e.pool.LimitUpPool(ctx, date)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn().Err(err).Msg("Limit-up pool unavailable")
		}
		return nil
	}
	return pool
}

func (e *Engine) classifications(ctx context.Context, codes []string) map[string]models.Classification {
	if e.classify == nil || len(codes) == 0 {
		return nil
	}
	if len(codes) > maxBulkCodes {
		codes = codes[:maxBulkCodes]
	}

	result, err := e.classify.OrgClassification(ctx, codes)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn().Err(err).Msg("Bulk classification unavailable")
		}
		result = nil
	}
	if result == nil {
		result = make(map[string]models.Classification)
	}

	// The profile lookup carries the more specific board name; it overrides
	// the bulk industry when present.
	refine := codes
	if len(refine) > maxProfileCodes {
		refine = refine[:maxProfileCodes]
	}
	for _, code := range refine {
		industry, err := e.classify.CompanyProfile(ctx, code)
		if err != nil || industry == "" {
			continue
		}
		entry := result[code]
		entry.Industry = industry
		result[code] = entry
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// collectCodes gathers every distinct stock code across the mover and flow
// tables, preserving first-seen order.
func collectCodes(report *models.MarketReport) []string {
	var codes []string
	seen := make(map[string]struct{})
	add := func(code string) {
		if code == "" {
			return
		}
		if _, dup := seen[code]; dup {
			return
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	if report.Stock != nil {
		for _, table := range [][]models.StockRow{report.Stock.TopGainers, report.Stock.TopLosers, report.Stock.TopTurnover} {
			for _, row := range table {
				add(row.Code)
			}
		}
	}
	if report.FundFlow != nil {
		for _, table := range [][]models.FlowRow{report.FundFlow.StockInflow, report.FundFlow.StockOutflow} {
			for _, row := range table {
				add(row.Code)
			}
		}
	}
	return codes
}

func (e *Engine) sectorReasons(reasons models.ReasonMap, report *models.MarketReport, news []models.NewsItem) {
	if report.Sector == nil {
		return
	}

	var matched map[string][]models.NewsItem
	if report.News != nil {
		matched = report.News.Matched
	}

	tables := [][]models.SectorRow{
		report.Sector.TopGainers, report.Sector.TopLosers,
		report.Sector.ConceptGainers, report.Sector.ConceptLosers,
	}
	for _, table := range tables {
		for _, row := range table {
			if row.Name == "" {
				continue
			}
			key := models.SectorKey(row.Name)
			if _, done := reasons[key]; done {
				continue
			}

			if items := matched[row.Name]; len(items) > 0 {
				reasons[key] = reduceTitle(items[0].Title)
				continue
			}
			if hit := matchName(row.Name, news); hit != "" {
				reasons[key] = hit
				continue
			}
			if hit := matchKeywords(e.sectorKeywords[row.Name], news); hit != "" {
				reasons[key] = hit
			}
		}
	}
}

// stockRef is the slice of a mover or flow row the stock pass needs
type stockRef struct {
	code      string
	name      string
	changePct float64
}

func (e *Engine) stockReasons(reasons models.ReasonMap, report *models.MarketReport, news []models.NewsItem,
	pool map[string]models.LimitEvent, classifications map[string]models.Classification) {

	var refs []stockRef
	if report.Stock != nil {
		for _, table := range [][]models.StockRow{report.Stock.TopGainers, report.Stock.TopLosers} {
			for _, row := range table {
				refs = append(refs, stockRef{code: row.Code, name: row.Name, changePct: row.ChangePct})
			}
		}
	}
	if report.FundFlow != nil {
		for _, table := range [][]models.FlowRow{report.FundFlow.StockInflow, report.FundFlow.StockOutflow} {
			for _, row := range table {
				refs = append(refs, stockRef{code: row.Code, name: row.Name, changePct: row.ChangePct})
			}
		}
	}

	leaderboard := sectorNameSet(report.Sector)

	for _, ref := range refs {
		if ref.code == "" {
			continue
		}
		key := models.StockKey(ref.code)
		if _, done := reasons[key]; done {
			continue
		}

		var clauses []string

		if event, ok := pool[ref.code]; ok {
			if event.Boards > 1 {
				clauses = append(clauses, fmt.Sprintf("%d连板", event.Boards))
			}
			if event.Industry != "" {
				clauses = append(clauses, event.Industry)
			}
		}

		if cls, ok := classifications[ref.code]; ok {
			if cls.Industry != "" && len(clauses) == 0 {
				if _, ranked := leaderboard[cls.Industry]; ranked {
					if ref.changePct > 0 {
						clauses = append(clauses, cls.Industry+"板块走强")
					} else {
						clauses = append(clauses, cls.Industry+"板块走弱")
					}
				} else {
					clauses = append(clauses, cls.Industry)
				}
			}

			keywords := cls.Keywords
			if len(keywords) > maxConceptKeywords {
				keywords = keywords[:maxConceptKeywords]
			}
			if hit := matchKeywords(keywords, news); hit != "" {
				clauses = append(clauses, hit)
			}
		}

		if len(clauses) == 0 || (len(clauses) == 1 && len([]rune(clauses[0])) < minClauseRunes) {
			if hit := matchName(ref.name, news); hit != "" {
				clauses = append(clauses, hit)
			}
		}

		if len(clauses) == 0 {
			continue
		}
		if len(clauses) > 2 {
			clauses = clauses[:2]
		}
		reasons[key] = truncate(strings.Join(clauses, "; "), maxReasonRunes)
	}
}

func sectorNameSet(sector *models.SectorReport) map[string]struct{} {
	names := make(map[string]struct{})
	if sector == nil {
		return names
	}
	for _, table := range [][]models.SectorRow{sector.TopGainers, sector.TopLosers, sector.ConceptGainers, sector.ConceptLosers} {
		for _, row := range table {
			if row.Name != "" {
				names[row.Name] = struct{}{}
			}
		}
	}
	return names
}

// matchName searches news titles for a display name, retrying with common
// corporate suffixes stripped when the full name finds nothing.
func matchName(name string, news []models.NewsItem) string {
	if name == "" || len(news) == 0 {
		return ""
	}

	for _, item := range news {
		if strings.Contains(item.Title, name) {
			return reduceTitle(item.Title)
		}
	}

	for _, suffix := range corporateSuffixes {
		short := strings.ReplaceAll(name, suffix, "")
		if len([]rune(short)) < 2 || short == name {
			continue
		}
		for _, item := range news {
			if strings.Contains(item.Title, short) {
				return reduceTitle(item.Title)
			}
		}
	}
	return ""
}

// matchKeywords returns the reduced title of the first news item containing
// any keyword of length >= 2, in keyword order.
func matchKeywords(keywords []string, news []models.NewsItem) string {
	if len(keywords) == 0 || len(news) == 0 {
		return ""
	}
	for _, kw := range keywords {
		if len([]rune(kw)) < 2 {
			continue
		}
		for _, item := range news {
			if strings.Contains(item.Title, kw) {
				return reduceTitle(item.Title)
			}
		}
	}
	return ""
}

// reduceTitle compresses a news title into a short reason clause: source
// markers stripped, trailing parentheses dropped, truncated with an ellipsis.
func reduceTitle(title string) string {
	for _, prefix := range []string{"[重要]", "金十数据"} {
		title = strings.TrimPrefix(title, prefix)
	}
	title = strings.TrimLeft(title, "【[ ：:")
	title = strings.TrimRight(title, "）) 】]")

	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes]) + "…"
	}
	return title
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
