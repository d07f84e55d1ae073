package eastmoney

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ternarybob/marketbrief/internal/models"
)

// LimitUpPool retrieves the same-day limit-up pool keyed by stock code.
// date is formatted YYYYMMDD.
func (c *Client) LimitUpPool(ctx context.Context, date string) (map[string]models.LimitEvent, error) {
	params := url.Values{}
	params.Set("ut", "7eea3edcaed734bea9cbfc24409ed989")
	params.Set("dpt", "wz.ztzt")
	params.Set("Pageindex", "0")
	params.Set("pagesize", "320")
	params.Set("sort", "fbt:asc")
	params.Set("date", date)
	params.Set("_", cacheBust())

	var resp struct {
		Data *struct {
			Pool []map[string]any `json:"pool"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, c.push2ExBase, "/getTopicZTPool", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		// No pool before market data settles; treat as empty, not an error
		return map[string]models.LimitEvent{}, nil
	}

	pool := make(map[string]models.LimitEvent, len(resp.Data.Pool))
	for _, entry := range resp.Data.Pool {
		code := asString(entry["c"])
		if code == "" {
			continue
		}
		boards := int(asFloat(entry["lbc"]))
		if boards < 1 {
			boards = 1
		}
		pool[code] = models.LimitEvent{
			Industry: asString(entry["hybk"]),
			Boards:   boards,
		}
	}
	return pool, nil
}

// OrgClassification bulk-resolves stock codes to their EM2016 classification.
// The EM2016 field is a dash-joined path ("电气设备-电源设备-太阳能"); the
// segments become concept keywords and the last segment the industry.
func (c *Client) OrgClassification(ctx context.Context, codes []string) (map[string]models.Classification, error) {
	if len(codes) == 0 {
		return map[string]models.Classification{}, nil
	}

	params := url.Values{}
	params.Set("reportName", "RPT_F10_BASIC_ORGINFO")
	params.Set("columns", "SECURITY_CODE,SECURITY_NAME_ABBR,EM2016")
	params.Set("filter", `(SECURITY_CODE in ("`+strings.Join(codes, `","`)+`"))`)
	params.Set("pageSize", "50")
	params.Set("pageNumber", "1")

	var resp struct {
		Result *struct {
			Data []struct {
				SecurityCode string `json:"SECURITY_CODE"`
				EM2016       string `json:"EM2016"`
			} `json:"data"`
		} `json:"result"`
	}
	if err := c.getJSON(ctx, c.dataBase, "/api/data/v1/get", params, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("classification response has no result")
	}

	result := make(map[string]models.Classification, len(resp.Result.Data))
	for _, item := range resp.Result.Data {
		if item.SecurityCode == "" {
			continue
		}
		var keywords []string
		for _, k := range strings.Split(item.EM2016, "-") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		industry := ""
		if len(keywords) > 0 {
			industry = keywords[len(keywords)-1]
		}
		result[item.SecurityCode] = models.Classification{
			Industry: industry,
			Keywords: keywords,
		}
	}
	return result, nil
}

// CompanyProfile retrieves the exact industry name from the F10 company
// survey. When present it is more specific than the bulk EM2016 value.
func (c *Client) CompanyProfile(ctx context.Context, code string) (string, error) {
	exchange := "SZ"
	if strings.HasPrefix(code, "6") || strings.HasPrefix(code, "9") {
		exchange = "SH"
	}

	params := url.Values{}
	params.Set("code", exchange+code)

	var resp struct {
		Jbzl struct {
			Sshy string `json:"sshy"`
		} `json:"jbzl"`
	}
	if err := c.getJSON(ctx, c.f10Base, "/PC_HSF10/CompanySurvey/CompanySurveyAjax", params, &resp); err != nil {
		return "", err
	}
	return resp.Jbzl.Sshy, nil
}
