package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/marketbrief/internal/models"
)

const (
	// DefaultPush2BaseURL serves quote lists, board data and fund flow
	DefaultPush2BaseURL = "https://push2.eastmoney.com"
	// DefaultPush2ExBaseURL serves the limit-up pool dataset
	DefaultPush2ExBaseURL = "https://push2ex.eastmoney.com"
	// DefaultDataBaseURL serves the datacenter report API
	DefaultDataBaseURL = "https://datacenter-web.eastmoney.com"
	// DefaultF10BaseURL serves the company profile (F10) pages
	DefaultF10BaseURL = "https://emweb.securities.eastmoney.com"

	// DefaultTimeout is the default HTTP timeout
	DefaultTimeout = 15 * time.Second

	// DefaultThrottle is the default minimum interval between calls
	DefaultThrottle = 300 * time.Millisecond

	referer = "https://data.eastmoney.com/"
)

// Client is an eastmoney API client
type Client struct {
	push2Base   string
	push2ExBase string
	dataBase    string
	f10Base     string
	httpClient  *http.Client
	logger      arbor.ILogger
	limiter     *rate.Limiter
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithBaseURL sets one base URL for all endpoint families
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		base := strings.TrimSuffix(baseURL, "/")
		c.push2Base = base
		c.push2ExBase = base
		c.dataBase = base
		c.f10Base = base
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithThrottle sets the minimum interval between API calls
func WithThrottle(interval time.Duration) ClientOption {
	return func(c *Client) {
		if interval > 0 {
			c.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// NewClient creates a new eastmoney client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		push2Base:   DefaultPush2BaseURL,
		push2ExBase: DefaultPush2ExBaseURL,
		dataBase:    DefaultDataBaseURL,
		f10Base:     DefaultF10BaseURL,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Every(DefaultThrottle), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON performs a throttled GET request and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, base, path string, params url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle wait interrupted: %w", err)
	}

	reqURL := base + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Referer", referer)

	if c.logger != nil {
		c.logger.Debug().Str("url", base+path).Msg("eastmoney API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// cacheBust returns the millisecond-timestamp query value the web frontends
// append to every push2 call
func cacheBust() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// SecID converts a stock code to the push2 security id.
// Shanghai codes (6/9 prefixes) map to market 1, everything else to market 0.
func SecID(code string) string {
	if strings.HasPrefix(code, "6") || strings.HasPrefix(code, "9") {
		return "1." + code
	}
	return "0." + code
}

// push2 list envelope
type listResponse struct {
	Data *struct {
		Total int              `json:"total"`
		Diff  []map[string]any `json:"diff"`
	} `json:"data"`
}

// clist performs a push2 clist query and returns the diff entries
func (c *Client) clist(ctx context.Context, fs, fid, fields string, page, size int) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("pn", strconv.Itoa(page))
	params.Set("pz", strconv.Itoa(size))
	params.Set("po", "1")
	params.Set("np", "1")
	params.Set("fltt", "2")
	params.Set("invt", "2")
	params.Set("ut", ut)
	params.Set("fid", fid)
	params.Set("fs", fs)
	params.Set("fields", fields)
	params.Set("_", cacheBust())

	var resp listResponse
	if err := c.getJSON(ctx, c.push2Base, "/api/qt/clist/get", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("clist response has no data (fs=%s)", fs)
	}
	return resp.Data.Diff, nil
}

// SpotList retrieves a full A-share market snapshot. This is the secondary
// stock quote source; the caller ranks and truncates.
func (c *Client) SpotList(ctx context.Context) ([]models.StockRow, error) {
	diff, err := c.clist(ctx, fsAllAShares, "f3",
		"f12,f14,f2,f3,f4,f5,f6,f7,f8,f15,f16,f17,f18", 1, 10000)
	if err != nil {
		return nil, err
	}
	rows := make([]models.StockRow, 0, len(diff))
	for _, d := range diff {
		rows = append(rows, stockRowFromDiff(d))
	}
	return rows, nil
}

// IndustryBoards retrieves the industry board rankings (secondary sector source)
func (c *Client) IndustryBoards(ctx context.Context) ([]models.SectorRow, error) {
	return c.boards(ctx, fsIndustryBoards)
}

// ConceptBoards retrieves the concept board rankings (secondary sector source)
func (c *Client) ConceptBoards(ctx context.Context) ([]models.SectorRow, error) {
	return c.boards(ctx, fsConceptBoards)
}

func (c *Client) boards(ctx context.Context, fs string) ([]models.SectorRow, error) {
	diff, err := c.clist(ctx, fs, "f3", "f12,f14,f3,f104,f105,f128,f136", 1, 500)
	if err != nil {
		return nil, err
	}
	rows := make([]models.SectorRow, 0, len(diff))
	for _, d := range diff {
		rows = append(rows, models.SectorRow{
			Name:          asString(d["f14"]),
			ChangePct:     asFloat(d["f3"]),
			StockCount:    int(asFloat(d["f104"]) + asFloat(d["f105"])),
			LeadStock:     asString(d["f128"]),
			LeadChangePct: asFloat(d["f136"]),
		})
	}
	return rows, nil
}

// QuoteList retrieves quotes for specific stock codes (watchlist quotes).
// Results map provider order; callers that care about a configured order must
// reorder themselves.
func (c *Client) QuoteList(ctx context.Context, codes []string) ([]models.StockRow, error) {
	diff, err := c.ulist(ctx, codes, "f12,f14,f2,f3,f4,f5,f6,f7,f8,f15,f16,f17,f18")
	if err != nil {
		return nil, err
	}
	rows := make([]models.StockRow, 0, len(diff))
	for _, d := range diff {
		rows = append(rows, stockRowFromDiff(d))
	}
	return rows, nil
}

// FlowFields holds the per-stock flow enrichment for watchlist rows
type FlowFields struct {
	MainInflow    float64
	MainInflowPct float64
}

// FlowList retrieves main-capital flow fields for specific stock codes
func (c *Client) FlowList(ctx context.Context, codes []string) (map[string]FlowFields, error) {
	diff, err := c.ulist(ctx, codes, "f12,f14,f62,f184")
	if err != nil {
		return nil, err
	}
	flows := make(map[string]FlowFields, len(diff))
	for _, d := range diff {
		code := asString(d["f12"])
		if code == "" {
			continue
		}
		flows[code] = FlowFields{
			MainInflow:    asFloat(d["f62"]),
			MainInflowPct: asFloat(d["f184"]),
		}
	}
	return flows, nil
}

func (c *Client) ulist(ctx context.Context, codes []string, fields string) ([]map[string]any, error) {
	secids := make([]string, len(codes))
	for i, code := range codes {
		secids[i] = SecID(code)
	}

	params := url.Values{}
	params.Set("fltt", "2")
	params.Set("invt", "2")
	params.Set("ut", ut)
	params.Set("secids", strings.Join(secids, ","))
	params.Set("fields", fields)
	params.Set("_", cacheBust())

	var resp listResponse
	if err := c.getJSON(ctx, c.push2Base, "/api/qt/ulist.np/get", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("ulist response has no data")
	}
	return resp.Data.Diff, nil
}

// BoardQuote retrieves a single board's own quote (watch sector overview)
func (c *Client) BoardQuote(ctx context.Context, bkCode string) (models.WatchSectorOverview, error) {
	params := url.Values{}
	params.Set("secid", "90."+bkCode)
	params.Set("ut", ut)
	params.Set("fltt", "2")
	params.Set("invt", "2")
	params.Set("fields", "f43,f48,f57,f58,f169,f170")
	params.Set("_", cacheBust())

	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := c.getJSON(ctx, c.push2Base, "/api/qt/stock/get", params, &resp); err != nil {
		return models.WatchSectorOverview{}, err
	}
	if resp.Data == nil {
		return models.WatchSectorOverview{}, fmt.Errorf("board quote response has no data (board %s)", bkCode)
	}
	return models.WatchSectorOverview{
		ChangePct: asFloat(resp.Data["f170"]),
		ChangeAmt: asFloat(resp.Data["f169"]),
		Turnover:  asFloat(resp.Data["f48"]),
	}, nil
}

// BoardConstituents retrieves a board's constituent stocks, change descending
func (c *Client) BoardConstituents(ctx context.Context, bkCode string) ([]models.StockRow, error) {
	diff, err := c.clist(ctx, "b:"+bkCode, "f3", "f12,f14,f2,f3,f4,f6,f7,f8,f62,f184", 1, 100)
	if err != nil {
		return nil, err
	}
	rows := make([]models.StockRow, 0, len(diff))
	for _, d := range diff {
		row := stockRowFromDiff(d)
		row.MainInflow = asFloat(d["f62"])
		row.MainInflowPct = asFloat(d["f184"])
		rows = append(rows, row)
	}
	return rows, nil
}

func stockRowFromDiff(d map[string]any) models.StockRow {
	return models.StockRow{
		Code:         asString(d["f12"]),
		Name:         asString(d["f14"]),
		LastPrice:    asFloat(d["f2"]),
		ChangePct:    asFloat(d["f3"]),
		ChangeAmt:    asFloat(d["f4"]),
		Volume:       asFloat(d["f5"]),
		Turnover:     asFloat(d["f6"]),
		Amplitude:    asFloat(d["f7"]),
		TurnoverRate: asFloat(d["f8"]),
		High:         asFloat(d["f15"]),
		Low:          asFloat(d["f16"]),
		Open:         asFloat(d["f17"]),
		PrevClose:    asFloat(d["f18"]),
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// Some endpoints return numeric codes; restore the 6-digit form
		return fmt.Sprintf("%06.0f", t)
	default:
		return ""
	}
}

// asFloat coerces a push2 value. Missing values arrive as the string "-".
func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	case json.Number:
		f, _ := t.Float64()
		return f
	default:
		return 0
	}
}
