package sina

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/models"
)

const (
	// DefaultBaseURL is the Sina Finance vip host serving boards and rankings
	DefaultBaseURL = "https://vip.stock.finance.sina.com.cn"

	// DefaultTimeout is the default HTTP timeout
	DefaultTimeout = 15 * time.Second

	referer = "https://finance.sina.com.cn/"

	industryPath = "/q/view/newSinaHy.php"
	conceptPath  = "/q/view/newFLJK.php"
	rankPath     = "/quotes_service/api/json_v2.php/Market_Center.getHQNodeData"
	countPath    = "/quotes_service/api/json_v2.php/Market_Center.getHQNodeStockCount"
)

// Client is a Sina Finance API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
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

// NewClient creates a new Sina Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a GET request and returns the raw body
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Referer", referer)

	if c.logger != nil {
		c.logger.Debug().Str("url", c.baseURL+path).Msg("sina API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: path}
	}

	return io.ReadAll(resp.Body)
}

// IndustryBoards retrieves the industry board rankings
func (c *Client) IndustryBoards(ctx context.Context) ([]models.SectorRow, error) {
	body, err := c.get(ctx, industryPath, nil)
	if err != nil {
		return nil, err
	}
	return parseBoardsJS(body)
}

// ConceptBoards retrieves the concept board rankings
func (c *Client) ConceptBoards(ctx context.Context) ([]models.SectorRow, error) {
	params := url.Values{}
	params.Set("param", "class")

	body, err := c.get(ctx, conceptPath, params)
	if err != nil {
		return nil, err
	}
	return parseBoardsJS(body)
}

// jsObjectRe extracts the outermost JSON object from a JS variable assignment
var jsObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseBoardsJS parses the board response, a JS-variable-wrapped JSON object
// whose values are comma-joined field strings.
func parseBoardsJS(body []byte) ([]models.SectorRow, error) {
	match := jsObjectRe.Find(body)
	if match == nil {
		return nil, fmt.Errorf("no JSON object in board response")
	}

	var raw map[string]string
	if err := json.Unmarshal(match, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse board response: %w", err)
	}

	rows := make([]models.SectorRow, 0, len(raw))
	for _, val := range raw {
		parts := strings.Split(val, ",")
		if len(parts) < 13 {
			continue
		}
		count, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		changePct, err := strconv.ParseFloat(parts[4], 64)
		if err != nil {
			continue
		}
		leadPct, err := strconv.ParseFloat(parts[9], 64)
		if err != nil {
			continue
		}
		rows = append(rows, models.SectorRow{
			Name:          parts[1],
			StockCount:    count,
			ChangePct:     changePct,
			LeadStock:     parts[12],
			LeadChangePct: leadPct,
		})
	}
	return rows, nil
}

// RankedStocks retrieves one page of the A-share ranking for the given sort
// field. Numeric fields arrive as strings and are coerced; rows that fail to
// coerce are kept with zero values and filtered by the caller.
func (c *Client) RankedStocks(ctx context.Context, sortField string, asc bool, page, num int) ([]models.StockRow, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("num", strconv.Itoa(num))
	params.Set("node", "hs_a")
	params.Set("sort", sortField)
	params.Set("_s_r_a", "sart")
	if asc {
		params.Set("asc", "1")
	} else {
		params.Set("asc", "0")
	}

	body, err := c.get(ctx, rankPath, params)
	if err != nil {
		return nil, err
	}

	var entries []map[string]any
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse ranking response: %w", err)
	}

	rows := make([]models.StockRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, models.StockRow{
			Code:         asString(e["code"]),
			Name:         asString(e["name"]),
			LastPrice:    asFloat(e["trade"]),
			ChangePct:    asFloat(e["changepercent"]),
			ChangeAmt:    asFloat(e["pricechange"]),
			Volume:       asFloat(e["volume"]),
			Turnover:     asFloat(e["amount"]),
			TurnoverRate: asFloat(e["turnoverratio"]),
			High:         asFloat(e["high"]),
			Low:          asFloat(e["low"]),
			Open:         asFloat(e["open"]),
			PrevClose:    asFloat(e["settlement"]),
		})
	}
	return rows, nil
}

// StockCount returns the total number of listed A-share instruments
func (c *Client) StockCount(ctx context.Context) (int, error) {
	params := url.Values{}
	params.Set("node", "hs_a")

	body, err := c.get(ctx, countPath, params)
	if err != nil {
		return 0, err
	}

	// Response is a JSON-quoted number, e.g. "5321"
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("failed to parse count response: %w", err)
	}
	total := int(asFloat(raw))
	if total <= 0 {
		return 0, fmt.Errorf("count response is not a positive number: %q", string(body))
	}
	return total, nil
}

// MidSampleChangePct returns the change percentage of the single stock ranked
// in the middle of the change-percentage ordering. Used by the breadth
// estimator.
func (c *Client) MidSampleChangePct(ctx context.Context, total int) (float64, error) {
	rows, err := c.RankedStocks(ctx, SortChangePct, false, total/2, 1)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("empty mid-sample response")
	}
	return rows[0].ChangePct, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

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
