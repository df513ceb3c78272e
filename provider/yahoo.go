// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/go-resty/resty/v2"
	"github.com/penny-vault/pvstocks/data"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultYahooRateLimit = 24
	DefaultYahooUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	yahooCookieURL = "https://fc.yahoo.com"
	yahooQueryHost = "https://query1.finance.yahoo.com"

	infoModules = "assetProfile,price,summaryDetail,defaultKeyStatistics,financialData"
)

type statementModule struct {
	Module string
	Path   string
}

var statementModules = map[data.Table]statementModule{
	data.BalanceSheet: {Module: "balanceSheetHistory", Path: "balanceSheetStatements"},
	data.Financials:   {Module: "incomeStatementHistory", Path: "incomeStatementHistory"},
	data.CashFlow:     {Module: "cashflowStatementHistory", Path: "cashflowStatements"},
}

// Yahoo downloads financial statements from the Yahoo Finance quoteSummary
// API. Requests are rate limited and responses are cached for the lifetime
// of the adapter so the info and key stats of a ticker cost one request.
type Yahoo struct {
	client  *resty.Client
	limiter *rate.Limiter
	cache   *haxmap.Map[string, string]

	cookieURL  string
	crumbURL   string
	summaryURL string

	mu    sync.Mutex
	crumb string
}

type YahooOption func(*Yahoo)

// WithRateLimit sets the maximum number of requests per minute
func WithRateLimit(perMinute int) YahooOption {
	return func(yahoo *Yahoo) {
		if perMinute <= 0 {
			perMinute = DefaultYahooRateLimit
		}
		yahoo.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
	}
}

// WithUserAgent overrides the user agent sent with every request
func WithUserAgent(userAgent string) YahooOption {
	return func(yahoo *Yahoo) {
		if userAgent != "" {
			yahoo.client.SetHeader("User-Agent", userAgent)
		}
	}
}

// WithHost points the adapter at a different server, used in tests
func WithHost(host string) YahooOption {
	return func(yahoo *Yahoo) {
		host = strings.TrimSuffix(host, "/")
		yahoo.cookieURL = host + "/"
		yahoo.crumbURL = host + "/v1/test/getcrumb"
		yahoo.summaryURL = host + "/v10/finance/quoteSummary/%s"
	}
}

// NewYahoo creates a Yahoo Finance adapter
func NewYahoo(opts ...YahooOption) *Yahoo {
	yahoo := &Yahoo{
		client:     resty.New().SetTimeout(30*time.Second).SetHeader("User-Agent", DefaultYahooUserAgent),
		limiter:    rate.NewLimiter(rate.Limit(float64(DefaultYahooRateLimit)/60.0), 1),
		cache:      haxmap.New[string, string](),
		cookieURL:  yahooCookieURL,
		crumbURL:   yahooQueryHost + "/v1/test/getcrumb",
		summaryURL: yahooQueryHost + "/v10/finance/quoteSummary/%s",
	}

	for _, opt := range opts {
		opt(yahoo)
	}

	return yahoo
}

// FetchStatement returns the records of the requested statement type for
// ticker. Dated statements are ordered newest first; when lastDateOnly is set
// only the newest is returned. A ticker unknown to Yahoo yields no records.
func (yahoo *Yahoo) FetchStatement(ctx context.Context, ticker string, table data.Table, lastDateOnly bool) ([]*data.StatementRecord, error) {
	switch table {
	case data.BalanceSheet, data.Financials, data.CashFlow:
		return yahoo.statements(ctx, ticker, table, lastDateOnly)
	case data.CompanyInfo:
		return yahoo.info(ctx, ticker, true)
	case data.KeyStats:
		return yahoo.info(ctx, ticker, false)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTable, table)
	}
}

func (yahoo *Yahoo) statements(ctx context.Context, ticker string, table data.Table, lastDateOnly bool) ([]*data.StatementRecord, error) {
	logger := zerolog.Ctx(ctx)
	mod := statementModules[table]

	body, found, err := yahoo.quoteSummary(ctx, ticker, mod.Module)
	if err != nil || !found {
		return nil, err
	}

	records := make([]*data.StatementRecord, 0, 4)
	gjson.Get(body, fmt.Sprintf("quoteSummary.result.0.%s.%s", mod.Module, mod.Path)).ForEach(func(_, statement gjson.Result) bool {
		record := &data.StatementRecord{
			Ticker: ticker,
			Fields: make(data.Fields),
		}

		statement.ForEach(func(key, value gjson.Result) bool {
			switch key.String() {
			case "maxAge":
			case "endDate":
				if raw := value.Get("raw"); raw.Exists() {
					record.Date = data.DateOnly(time.Unix(raw.Int(), 0).UTC())
				}
			default:
				if val, ok := flattenValue(value); ok {
					record.Fields[data.SnakeCase(key.String())] = val
				}
			}
			return true
		})

		if !record.HasDate() {
			logger.Warn().Str("Ticker", ticker).Stringer("Table", table).Msg("skipping statement without an end date")
			return true
		}

		deriveWorkingCapital(record.Fields)
		records = append(records, record)
		return true
	})

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})

	if lastDateOnly && len(records) > 1 {
		records = records[:1]
	}

	return records, nil
}

// info returns the company profile when companyInfo is set and the key
// statistics otherwise. Both are split from the same response.
func (yahoo *Yahoo) info(ctx context.Context, ticker string, companyInfo bool) ([]*data.StatementRecord, error) {
	body, found, err := yahoo.quoteSummary(ctx, ticker, infoModules)
	if err != nil || !found {
		return nil, err
	}

	result := gjson.Get(body, "quoteSummary.result.0")
	if !result.IsObject() {
		return nil, nil
	}

	fields := make(data.Fields)
	result.ForEach(func(_, module gjson.Result) bool {
		module.ForEach(func(key, value gjson.Result) bool {
			if key.String() == "maxAge" {
				return true
			}

			name := data.SnakeCase(key.String())
			if IsCompanyInfoKey(name) != companyInfo {
				return true
			}

			if _, exists := fields[name]; exists {
				return true
			}

			if val, ok := flattenValue(value); ok {
				fields[name] = val
			}
			return true
		})
		return true
	})

	if len(fields) == 0 {
		return nil, nil
	}

	return []*data.StatementRecord{{Ticker: ticker, Fields: fields}}, nil
}

// quoteSummary requests the given modules for ticker. The boolean is false
// when Yahoo does not know the ticker.
func (yahoo *Yahoo) quoteSummary(ctx context.Context, ticker, modules string) (string, bool, error) {
	logger := zerolog.Ctx(ctx)

	cacheKey := ticker + "|" + modules
	if body, ok := yahoo.cache.Get(cacheKey); ok {
		return body, body != "", nil
	}

	crumb, err := yahoo.getCrumb(ctx)
	if err != nil {
		return "", false, err
	}

	if err := yahoo.limiter.Wait(ctx); err != nil {
		return "", false, err
	}

	summaryURL := fmt.Sprintf(yahoo.summaryURL, url.PathEscape(ticker))
	resp, err := yahoo.client.R().
		SetContext(ctx).
		SetQueryParam("modules", modules).
		SetQueryParam("crumb", crumb).
		Get(summaryURL)
	if err != nil {
		logger.Error().Err(err).Str("Ticker", ticker).Str("Modules", modules).Msg("resty returned an error when querying quoteSummary")
		return "", false, err
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		logger.Info().Str("Ticker", ticker).Msg("ticker not found on yahoo")
		yahoo.cache.Set(cacheKey, "")
		return "", false, nil
	case resp.StatusCode() == http.StatusUnauthorized:
		yahoo.resetCrumb()
		return "", false, fmt.Errorf("%w: quoteSummary %s", ErrUnauthorized, ticker)
	case resp.StatusCode() >= 300:
		logger.Error().Int("StatusCode", resp.StatusCode()).Str("Ticker", ticker).Str("ResponseBody", string(resp.Body())).
			Msg("received an invalid status code when querying quoteSummary")
		return "", false, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode())
	}

	body := resp.String()
	if errCode := gjson.Get(body, "quoteSummary.error.code"); errCode.Exists() {
		if strings.EqualFold(errCode.String(), "Not Found") {
			yahoo.cache.Set(cacheKey, "")
			return "", false, nil
		}

		return "", false, fmt.Errorf("%w: %s", ErrHTTPStatus, gjson.Get(body, "quoteSummary.error.description").String())
	}

	if !gjson.Get(body, "quoteSummary.result.0").Exists() {
		yahoo.cache.Set(cacheKey, "")
		return "", false, nil
	}

	yahoo.cache.Set(cacheKey, body)
	return body, true, nil
}

// getCrumb returns the session crumb, fetching a session cookie and crumb
// on first use
func (yahoo *Yahoo) getCrumb(ctx context.Context) (string, error) {
	yahoo.mu.Lock()
	defer yahoo.mu.Unlock()

	if yahoo.crumb != "" {
		return yahoo.crumb, nil
	}

	if err := yahoo.limiter.Wait(ctx); err != nil {
		return "", err
	}

	// the cookie endpoint answers 404 but still sets the session cookie
	if _, err := yahoo.client.R().SetContext(ctx).Get(yahoo.cookieURL); err != nil {
		return "", err
	}

	resp, err := yahoo.client.R().SetContext(ctx).Get(yahoo.crumbURL)
	if err != nil {
		return "", err
	}

	if resp.StatusCode() >= 300 {
		return "", fmt.Errorf("%w: status code %d", ErrCrumb, resp.StatusCode())
	}

	crumb := strings.TrimSpace(resp.String())
	if crumb == "" {
		return "", ErrCrumb
	}

	yahoo.crumb = crumb
	return crumb, nil
}

func (yahoo *Yahoo) resetCrumb() {
	yahoo.mu.Lock()
	defer yahoo.mu.Unlock()
	yahoo.crumb = ""
}

// flattenValue converts a quoteSummary value into a plain value. Formatted
// numbers ({"raw": 1, "fmt": "1"}) collapse to their raw value and empty
// objects are dropped.
func flattenValue(value gjson.Result) (any, bool) {
	switch {
	case value.Type == gjson.Null:
		return nil, false
	case value.IsObject():
		if raw := value.Get("raw"); raw.Exists() {
			if raw.Type == gjson.Number {
				return raw.Float(), true
			}
			return raw.Value(), true
		}

		if len(value.Map()) == 0 {
			return nil, false
		}

		return value.Value(), true
	default:
		return value.Value(), true
	}
}

func deriveWorkingCapital(fields data.Fields) {
	if _, ok := fields.Float("working_capital"); ok {
		return
	}

	assets, ok := fields.Float("total_current_assets")
	if !ok {
		return
	}

	liabilities, ok := fields.Float("total_current_liabilities")
	if !ok {
		return
	}

	fields["working_capital"] = assets - liabilities
}
