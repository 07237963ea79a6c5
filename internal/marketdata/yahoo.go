package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	apperrors "revcompare/internal/errors"
	"revcompare/internal/logging"
	"revcompare/internal/models"
)

// quarterlyTypes are the statement lines requested from the
// fundamentals time series endpoint.
var quarterlyTypes = []string{
	"quarterlyTotalRevenue",
	"quarterlyCostOfRevenue",
	"quarterlyGrossProfit",
	"quarterlyOperatingIncome",
	"quarterlyNetIncome",
	"quarterlyEBITDA",
}

// YahooConfig holds configuration for the Yahoo Finance provider.
type YahooConfig struct {
	BaseURL           string
	SessionURL        string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables limiting
	HistoryYears      int
}

// YahooProvider implements Provider against the Yahoo Finance JSON API.
type YahooProvider struct {
	cfg     YahooConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
	now     func() time.Time

	mu    sync.Mutex
	crumb string
}

// NewYahooProvider creates a new Yahoo Finance provider.
func NewYahooProvider(cfg YahooConfig, logger zerolog.Logger) (*YahooProvider, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.HistoryYears <= 0 {
		cfg.HistoryYears = 6
	}

	return &YahooProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logging.WithStage(logger, "fetch"),
		now:     time.Now,
	}, nil
}

// yahooValue is Yahoo's {raw, fmt} number. Raw is kept undecoded because
// Yahoo sends strings such as "Infinity" for undefined ratios.
type yahooValue struct {
	Raw json.RawMessage `json:"raw"`
	Fmt string          `json:"fmt"`
}

// Decimal returns the finite numeric value of Raw, or false when it is
// missing, null or not a finite number.
func (v *yahooValue) Decimal() (decimal.Decimal, bool) {
	if v == nil {
		return decimal.Decimal{}, false
	}
	raw := strings.TrimSpace(string(v.Raw))
	if raw == "" || raw == "null" {
		return decimal.Decimal{}, false
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(v.Raw, &str); err != nil {
			return decimal.Decimal{}, false
		}
		raw = str
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type timeseriesResponse struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *yahooError                  `json:"error"`
	} `json:"timeseries"`
}

type timeseriesMeta struct {
	Symbol []string `json:"symbol"`
	Type   []string `json:"type"`
}

type timeseriesEntry struct {
	AsOfDate      string     `json:"asOfDate"`
	PeriodType    string     `json:"periodType"`
	CurrencyCode  string     `json:"currencyCode"`
	ReportedValue yahooValue `json:"reportedValue"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE *yahooValue `json:"trailingPE"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// QuarterlyFinancials fetches the quarterly statement lines for symbol.
func (y *YahooProvider) QuarterlyFinancials(ctx context.Context, symbol string) (*models.StatementTable, error) {
	const op = "quarterly_financials"

	now := y.now().UTC()
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("type", strings.Join(quarterlyTypes, ","))
	params.Set("period1", strconv.FormatInt(now.AddDate(-y.cfg.HistoryYears, 0, 0).Unix(), 10))
	params.Set("period2", strconv.FormatInt(now.Unix(), 10))
	endpoint := fmt.Sprintf("%s/ws/fundamentals-timeseries/v1/finance/timeseries/%s?%s",
		y.cfg.BaseURL, url.PathEscape(symbol), params.Encode())

	var resp timeseriesResponse
	if err := y.getJSON(ctx, symbol, op, endpoint, &resp); err != nil {
		return nil, err
	}
	if e := resp.Timeseries.Error; e != nil {
		return nil, apperrors.NewFetchError(symbol, op, 0, yahooErr(e))
	}

	table := models.NewStatementTable(symbol)
	for _, result := range resp.Timeseries.Result {
		var meta timeseriesMeta
		if raw, ok := result["meta"]; ok {
			if err := json.Unmarshal(raw, &meta); err != nil {
				return nil, apperrors.NewFetchError(symbol, op, 0, fmt.Errorf("decoding meta: %w", err))
			}
		}
		for _, typ := range meta.Type {
			raw, ok := result[typ]
			if !ok {
				continue
			}
			var entries []*timeseriesEntry
			if err := json.Unmarshal(raw, &entries); err != nil {
				return nil, apperrors.NewFetchError(symbol, op, 0, fmt.Errorf("decoding %s: %w", typ, err))
			}
			line := LineLabel(typ)
			for _, entry := range entries {
				// Yahoo pads missing quarters with null entries.
				if entry == nil {
					continue
				}
				value, ok := entry.ReportedValue.Decimal()
				if !ok {
					continue
				}
				date, err := time.ParseInLocation("2006-01-02", entry.AsOfDate, time.UTC)
				if err != nil {
					return nil, apperrors.NewFetchError(symbol, op, 0, fmt.Errorf("parsing asOfDate %q: %w", entry.AsOfDate, err))
				}
				table.Set(line, date, value)
			}
		}
	}

	if len(table.Rows) == 0 {
		return nil, apperrors.NewFetchError(symbol, op, 0, apperrors.ErrSymbolNotFound)
	}

	y.logger.Debug().
		Str("symbol", symbol).
		Int("lines", len(table.Rows)).
		Int("quarters", len(table.Columns)).
		Msg("Quarterly financials fetched")

	return table, nil
}

// TrailingPE fetches the trailing P/E ratio for symbol.
func (y *YahooProvider) TrailingPE(ctx context.Context, symbol string) (decimal.NullDecimal, error) {
	const op = "trailing_pe"

	crumb, err := y.sessionCrumb(ctx, symbol)
	if err != nil {
		return decimal.NullDecimal{}, err
	}

	params := url.Values{}
	params.Set("modules", "summaryDetail")
	params.Set("crumb", crumb)
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", y.cfg.BaseURL, url.PathEscape(symbol), params.Encode())

	var resp quoteSummaryResponse
	if err := y.getJSON(ctx, symbol, op, endpoint, &resp); err != nil {
		return decimal.NullDecimal{}, err
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return decimal.NullDecimal{}, apperrors.NewFetchError(symbol, op, 0, yahooErr(e))
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return decimal.NullDecimal{}, apperrors.NewFetchError(symbol, op, 0, apperrors.ErrSymbolNotFound)
	}

	pe := resp.QuoteSummary.Result[0].SummaryDetail.TrailingPE
	ratio, ok := pe.Decimal()
	if !ok {
		ev := y.logger.Info().Str("symbol", symbol)
		if pe != nil && len(pe.Raw) > 0 {
			ev = ev.RawJSON("raw", pe.Raw)
		}
		ev.Msg("Trailing P/E unavailable")
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(ratio), nil
}

// sessionCrumb returns the crumb required by quoteSummary, obtaining the
// session cookie and crumb on first use.
func (y *YahooProvider) sessionCrumb(ctx context.Context, symbol string) (string, error) {
	const op = "session"

	y.mu.Lock()
	defer y.mu.Unlock()
	if y.crumb != "" {
		return y.crumb, nil
	}

	if y.cfg.SessionURL != "" {
		// The session page answers 404 but still sets the cookie.
		body, _, err := y.get(ctx, y.cfg.SessionURL)
		if err != nil {
			return "", apperrors.NewFetchError(symbol, op, 0, apperrors.Wrap(apperrors.ErrConnectionFailed, err.Error()))
		}
		body.Close()
	}

	body, status, err := y.get(ctx, y.cfg.BaseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", apperrors.NewFetchError(symbol, op, 0, apperrors.Wrap(apperrors.ErrConnectionFailed, err.Error()))
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", apperrors.NewFetchError(symbol, op, status, err)
	}
	crumb := strings.TrimSpace(string(data))
	if status != http.StatusOK || crumb == "" || strings.ContainsAny(crumb, "<{") {
		return "", apperrors.NewFetchError(symbol, op, status, fmt.Errorf("no crumb in response: %w", apperrors.ErrConnectionFailed))
	}

	y.crumb = crumb
	return crumb, nil
}

func (y *YahooProvider) getJSON(ctx context.Context, symbol, op, endpoint string, target interface{}) error {
	body, status, err := y.get(ctx, endpoint)
	if err != nil {
		return apperrors.NewFetchError(symbol, op, 0, apperrors.Wrap(apperrors.ErrConnectionFailed, err.Error()))
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return apperrors.NewFetchError(symbol, op, status, err)
	}

	switch {
	case status == http.StatusNotFound:
		return apperrors.NewFetchError(symbol, op, status, apperrors.ErrSymbolNotFound)
	case status == http.StatusTooManyRequests:
		return apperrors.NewFetchError(symbol, op, status, apperrors.ErrRateLimited)
	case status < 200 || status > 299:
		return apperrors.NewFetchError(symbol, op, status, apperrors.ErrConnectionFailed)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return apperrors.NewFetchError(symbol, op, status, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// get performs a rate-limited GET. The caller closes the body.
func (y *YahooProvider) get(ctx context.Context, endpoint string) (io.ReadCloser, int, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", y.cfg.UserAgent)
	req.Header.Set("Accept", "application/json,text/plain,*/*")

	start := time.Now()
	resp, err := y.client.Do(req)
	if err != nil {
		logging.LogAPICall(y.logger, req.Method, req.URL.Path, 0, time.Since(start), err)
		return nil, 0, err
	}
	logging.LogAPICall(y.logger, req.Method, req.URL.Path, resp.StatusCode, time.Since(start), nil)

	return resp.Body, resp.StatusCode, nil
}

func yahooErr(e *yahooError) error {
	if strings.EqualFold(e.Code, "Not Found") {
		return apperrors.Wrap(apperrors.ErrSymbolNotFound, e.Description)
	}
	return fmt.Errorf("%s: %s", e.Code, e.Description)
}

// LineLabel converts a time series type such as "quarterlyTotalRevenue"
// into its statement label ("Total Revenue"). Runs of capitals stay
// together, so "quarterlyEBITDA" becomes "EBITDA".
func LineLabel(typ string) string {
	for _, prefix := range []string{"quarterly", "annual", "trailing"} {
		if strings.HasPrefix(typ, prefix) {
			typ = typ[len(prefix):]
			break
		}
	}

	runes := []rune(typ)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
