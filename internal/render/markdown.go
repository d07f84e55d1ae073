// Package render turns a finished MarketReport into its consumer formats:
// a markdown artifact on disk, a plain-text terminal view and the HTML the
// web viewer serves. Renderers only read the report; a nil sub-report is
// shown as unavailable, never as zeros.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/marketbrief/internal/models"
)

const unavailable = "数据暂不可用"

const disclaimer = "*以上信息基于公开数据自动生成，不构成投资建议。股市有风险，投资需谨慎。*"

// sessionLabel is the Chinese display name for a session tag
func sessionLabel(session models.Session) string {
	switch session {
	case models.SessionMorning:
		return "上午盘"
	case models.SessionAfternoon:
		return "下午盘"
	default:
		return "手动"
	}
}

// Markdown renders the full report as a markdown document
func Markdown(report *models.MarketReport) string {
	var b strings.Builder
	now := report.GeneratedAt.Format("2006-01-02 15:04")

	fmt.Fprintf(&b, "# A股市场报告 — %s (%s)\n\n", now, sessionLabel(report.Session))

	if report.Stock != nil {
		s := report.Stock
		b.WriteString("## 市场宽度\n\n")
		b.WriteString("| 指标 | 数值 |\n|------|------|\n")
		fmt.Fprintf(&b, "| 上涨 | %d |\n", s.UpCount)
		fmt.Fprintf(&b, "| 下跌 | %d |\n", s.DownCount)
		fmt.Fprintf(&b, "| 平盘 | %d |\n", s.FlatCount)
		fmt.Fprintf(&b, "| 涨停 | %d |\n", s.LimitUpCount)
		fmt.Fprintf(&b, "| 跌停 | %d |\n", s.LimitDownCount)
		if s.BreadthEstimated {
			b.WriteString("\n*涨跌家数为抽样估算值*\n")
		}
		b.WriteString("\n")
	}

	if report.Sector != nil {
		sec := report.Sector
		b.WriteString("## 行业板块涨幅 TOP\n\n")
		writeSectorTable(&b, sec.TopGainers, report.Reasons)
		b.WriteString("## 行业板块跌幅 TOP\n\n")
		writeSectorTable(&b, sec.TopLosers, report.Reasons)
		if len(sec.ConceptGainers) > 0 {
			b.WriteString("## 概念板块涨幅 TOP\n\n")
			writeSectorTable(&b, sec.ConceptGainers, report.Reasons)
		}
		if len(sec.ConceptLosers) > 0 {
			b.WriteString("## 概念板块跌幅 TOP\n\n")
			writeSectorTable(&b, sec.ConceptLosers, report.Reasons)
		}
	}

	if report.Stock != nil {
		s := report.Stock
		b.WriteString("## 个股涨幅 TOP\n\n")
		writeStockTable(&b, s.TopGainers, false, report.Reasons)
		b.WriteString("## 个股跌幅 TOP\n\n")
		writeStockTable(&b, s.TopLosers, false, report.Reasons)
		b.WriteString("## 成交额 TOP\n\n")
		writeStockTable(&b, s.TopTurnover, true, report.Reasons)
	}

	if report.FundFlow != nil {
		ff := report.FundFlow
		if len(ff.SectorFlow) > 0 {
			b.WriteString("## 板块资金流向 TOP\n\n")
			writeFlowTable(&b, ff.SectorFlow, true)
		}
		if len(ff.StockInflow) > 0 {
			b.WriteString("## 个股主力净流入 TOP\n\n")
			writeFlowTable(&b, ff.StockInflow, false)
		}
		if len(ff.StockOutflow) > 0 {
			b.WriteString("## 个股主力净流出 TOP\n\n")
			writeFlowTable(&b, ff.StockOutflow, false)
		}
	}

	if len(report.Watchlist) > 0 {
		b.WriteString("## 自选股\n\n")
		writeStockTable(&b, report.Watchlist, true, nil)
	}

	for _, ws := range report.WatchSectors {
		fmt.Fprintf(&b, "## 关注板块：%s (%s)\n\n", ws.Name, ws.Code)
		o := ws.Overview
		fmt.Fprintf(&b, "涨跌幅 %+.2f%%，主力净流入 %s，上涨 %d / 下跌 %d / 平盘 %d，涨停 %d（共 %d 只）\n\n",
			o.ChangePct, formatAmount(o.MainInflow), o.UpCount, o.DownCount, o.FlatCount, o.LimitUpCount, o.StockCount)
		writeStockTable(&b, ws.Stocks, true, nil)
	}

	if report.News != nil {
		writeNews(&b, report.News)
	}

	b.WriteString("---\n\n")
	b.WriteString(disclaimer + "\n")
	return b.String()
}

// Save renders the report and writes it under outputDir, returning the path.
// The filename keys off date and session so each run of a session overwrites
// its own artifact.
func Save(report *models.MarketReport, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(outputDir, report.ArtifactName()+".md")
	if err := os.WriteFile(path, []byte(Markdown(report)), 0o644); err != nil {
		return "", fmt.Errorf("write report artifact: %w", err)
	}
	return path, nil
}

func writeSectorTable(b *strings.Builder, rows []models.SectorRow, reasons models.ReasonMap) {
	if len(rows) == 0 {
		b.WriteString(unavailable + "\n\n")
		return
	}

	b.WriteString("| # | 板块名称 | 涨跌幅% | 原因 |\n|---|---------|---------|------|\n")
	for i, row := range rows {
		reason := reasons[models.SectorKey(row.Name)]
		fmt.Fprintf(b, "| %d | %s | %+.2f%% | %s |\n", i+1, row.Name, row.ChangePct, orDash(reason))
	}
	b.WriteString("\n")
}

func writeStockTable(b *strings.Builder, rows []models.StockRow, showTurnover bool, reasons models.ReasonMap) {
	if len(rows) == 0 {
		b.WriteString(unavailable + "\n\n")
		return
	}

	header := "| # | 代码 | 名称 | 最新价 | 涨跌幅% |"
	sep := "|---|------|------|--------|---------|"
	if showTurnover {
		header += " 成交额(亿) |"
		sep += "------------|"
	}
	if reasons != nil {
		header += " 原因 |"
		sep += "------|"
	}
	b.WriteString(header + "\n" + sep + "\n")

	for i, row := range rows {
		price := "--"
		if row.LastPrice > 0 {
			price = fmt.Sprintf("%.2f", row.LastPrice)
		}
		line := fmt.Sprintf("| %d | %s | %s | %s | %+.2f%% |", i+1, row.Code, row.Name, price, row.ChangePct)
		if showTurnover {
			if row.Turnover > 0 {
				line += fmt.Sprintf(" %.2f |", row.Turnover/1e8)
			} else {
				line += " -- |"
			}
		}
		if reasons != nil {
			line += fmt.Sprintf(" %s |", orDash(reasons[models.StockKey(row.Code)]))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}

func writeFlowTable(b *strings.Builder, rows []models.FlowRow, isSector bool) {
	if isSector {
		b.WriteString("| # | 板块 | 主力净流入 |\n|---|------|-----------|\n")
		for i, row := range rows {
			fmt.Fprintf(b, "| %d | %s | %s |\n", i+1, row.Name, formatAmount(row.MainInflow))
		}
	} else {
		b.WriteString("| # | 代码 | 名称 | 主力净流入 |\n|---|------|------|-----------|\n")
		for i, row := range rows {
			fmt.Fprintf(b, "| %d | %s | %s | %s |\n", i+1, row.Code, row.Name, formatAmount(row.MainInflow))
		}
	}
	b.WriteString("\n")
}

func writeNews(b *strings.Builder, news *models.NewsReport) {
	if len(news.Matched) > 0 {
		b.WriteString("## 板块涨跌关联新闻\n\n")
		count := 0
		for sector, items := range news.Matched {
			if count >= 10 {
				break
			}
			count++
			fmt.Fprintf(b, "### %s\n\n", sector)
			for i, item := range items {
				if i >= 3 {
					break
				}
				stamp := ""
				if !item.PublishTime.IsZero() {
					stamp = " (" + item.PublishTime.Format("15:04") + ")"
				}
				fmt.Fprintf(b, "- %s%s\n", truncateRunes(item.Title, 80), stamp)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## 最新财经要闻\n\n")
	seen := make(map[string]struct{})
	count := 0
	for _, item := range news.Items {
		if count >= 20 {
			break
		}
		title := truncateRunes(item.Title, 80)
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		count++

		stamp := ""
		if !item.PublishTime.IsZero() {
			stamp = " (" + item.PublishTime.Format("01-02 15:04") + ")"
		}
		fmt.Fprintf(b, "%d. %s%s — %s\n", count, title, stamp, item.Source)
	}
	b.WriteString("\n")
}

// formatAmount renders a CNY amount in 亿 or 万 units
func formatAmount(v float64) string {
	if v == 0 {
		return "--"
	}
	abs := v
	if abs < 0 {
		abs = -abs
	}
	if abs >= 1e8 {
		return fmt.Sprintf("%.2f亿", v/1e8)
	}
	return fmt.Sprintf("%.0f万", v/1e4)
}

func orDash(s string) string {
	if s == "" {
		return "--"
	}
	return s
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
