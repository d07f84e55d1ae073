package render

import (
	"fmt"
	"io"

	"github.com/ternarybob/marketbrief/internal/models"
)

// Terminal writes a compact plain-text view of the report. Intended for
// interactive runs; scheduled runs rely on the markdown artifact.
func Terminal(w io.Writer, report *models.MarketReport) {
	now := report.GeneratedAt.Format("2006-01-02 15:04")
	fmt.Fprintf(w, "\n=== A股市场报告  %s (%s) ===\n", now, sessionLabel(report.Session))

	if report.Stock != nil {
		s := report.Stock
		fmt.Fprintf(w, "\n市场宽度: 上涨 %d  下跌 %d  平盘 %d  涨停 %d  跌停 %d",
			s.UpCount, s.DownCount, s.FlatCount, s.LimitUpCount, s.LimitDownCount)
		if s.BreadthEstimated {
			fmt.Fprint(w, "  (估算)")
		}
		fmt.Fprintln(w)
	}

	if report.Sector != nil {
		printSectors(w, "行业板块涨幅", report.Sector.TopGainers, report.Reasons)
		printSectors(w, "行业板块跌幅", report.Sector.TopLosers, report.Reasons)
		printSectors(w, "概念板块涨幅", report.Sector.ConceptGainers, report.Reasons)
		printSectors(w, "概念板块跌幅", report.Sector.ConceptLosers, report.Reasons)
	} else {
		fmt.Fprintf(w, "\n板块数据: %s\n", unavailable)
	}

	if report.Stock != nil {
		printStocks(w, "个股涨幅 TOP", report.Stock.TopGainers, report.Reasons)
		printStocks(w, "个股跌幅 TOP", report.Stock.TopLosers, report.Reasons)
		printStocks(w, "成交额 TOP", report.Stock.TopTurnover, report.Reasons)
	}

	if report.FundFlow != nil {
		printFlows(w, "板块资金流向", report.FundFlow.SectorFlow)
		printFlows(w, "个股主力净流入", report.FundFlow.StockInflow)
		printFlows(w, "个股主力净流出", report.FundFlow.StockOutflow)
	} else {
		fmt.Fprintf(w, "\n资金流向: %s\n", unavailable)
	}

	if len(report.Watchlist) > 0 {
		printStocks(w, "自选股", report.Watchlist, nil)
	}

	for _, ws := range report.WatchSectors {
		o := ws.Overview
		fmt.Fprintf(w, "\n-- 关注板块 %s (%s) --\n", ws.Name, ws.Code)
		fmt.Fprintf(w, "  涨跌幅 %+.2f%%  主力净流入 %s  上涨 %d / 下跌 %d / 平盘 %d  涨停 %d\n",
			o.ChangePct, formatAmount(o.MainInflow), o.UpCount, o.DownCount, o.FlatCount, o.LimitUpCount)
	}

	if report.News != nil && len(report.News.Items) > 0 {
		fmt.Fprintf(w, "\n-- 最新财经要闻 --\n")
		for i, item := range report.News.Items {
			if i >= 10 {
				break
			}
			stamp := ""
			if !item.PublishTime.IsZero() {
				stamp = item.PublishTime.Format("15:04") + " "
			}
			fmt.Fprintf(w, "  %s%s [%s]\n", stamp, truncateRunes(item.Title, 60), item.Source)
		}
	}

	fmt.Fprintf(w, "\n以上信息基于公开数据自动生成，不构成投资建议。\n\n")
}

func printSectors(w io.Writer, title string, rows []models.SectorRow, reasons models.ReasonMap) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n-- %s --\n", title)
	for i, row := range rows {
		line := fmt.Sprintf("  %2d. %-10s %+7.2f%%", i+1, row.Name, row.ChangePct)
		if reason := reasons[models.SectorKey(row.Name)]; reason != "" {
			line += "  " + reason
		}
		fmt.Fprintln(w, line)
	}
}

func printStocks(w io.Writer, title string, rows []models.StockRow, reasons models.ReasonMap) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n-- %s --\n", title)
	for i, row := range rows {
		line := fmt.Sprintf("  %2d. %s %-8s %8.2f %+7.2f%%", i+1, row.Code, row.Name, row.LastPrice, row.ChangePct)
		if reason := reasons[models.StockKey(row.Code)]; reason != "" {
			line += "  " + reason
		}
		fmt.Fprintln(w, line)
	}
}

func printFlows(w io.Writer, title string, rows []models.FlowRow) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n-- %s --\n", title)
	for i, row := range rows {
		name := row.Name
		if row.Code != "" {
			name = row.Code + " " + name
		}
		fmt.Fprintf(w, "  %2d. %-16s %s\n", i+1, name, formatAmount(row.MainInflow))
	}
}
