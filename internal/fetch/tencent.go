// Package fetch implements the external market-data collaborators: the
// Tencent real-time quote endpoint and the daily K-line history endpoint.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stockwatch/internal/model"
)

// ErrNotFound marks a code the quote feed does not recognize.
var ErrNotFound = errors.New("fetch: instrument not found")

// Quoter obtains a real-time quote for a normalized instrument code.
type Quoter interface {
	Quote(ctx context.Context, code string) (*model.Quote, error)
}

// KLiner obtains daily candles for a code, oldest first.
type KLiner interface {
	DailyKLines(ctx context.Context, code string, count int) ([]model.KLine, error)
}

const (
	defaultQuoteURL = "http://qt.gtimg.cn/q=%s"
	defaultKLineURL = "https://web.ifzq.gtimg.cn/appstock/app/fqkline/get?param=%s,day,,,%d,qfq"
)

// Client talks to the Tencent quote endpoints.
type Client struct {
	httpc    *http.Client
	quoteURL string
	klineURL string
}

// NewClient creates a Client with a 5s request timeout.
func NewClient() *Client {
	return &Client{
		httpc:    &http.Client{Timeout: 5 * time.Second},
		quoteURL: defaultQuoteURL,
		klineURL: defaultKLineURL,
	}
}

// Quote fetches and parses one real-time quote snapshot.
func (c *Client) Quote(ctx context.Context, code string) (*model.Quote, error) {
	code = NormalizeCode(code)

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf(c.quoteURL, code), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: create request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: quote %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: quote %s: unexpected status %d", code, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("fetch: read quote %s: %w", code, err)
	}

	return parseQuote(code, string(body))
}

// parseQuote decodes the tilde-delimited quote payload.
//
// Field layout (subset): 1=name, 3=price, 4=pre_close, 5=open, 6=volume,
// 30=time, 33=high, 34=low, 37=amount.
func parseQuote(code, payload string) (*model.Quote, error) {
	if strings.Contains(payload, "pv_none_match") {
		return nil, ErrNotFound
	}

	fields := strings.Split(payload, "~")
	if len(fields) < 38 {
		return nil, fmt.Errorf("fetch: quote %s: short payload (%d fields)", code, len(fields))
	}

	return &model.Quote{
		Name:     fields[1],
		Code:     code,
		Price:    parseFloat(fields[3]),
		PreClose: parseFloat(fields[4]),
		Open:     parseFloat(fields[5]),
		Volume:   parseFloat(fields[6]),
		Time:     fields[30],
		High:     parseFloat(fields[33]),
		Low:      parseFloat(fields[34]),
		Amount:   parseFloat(fields[37]),
	}, nil
}

// parseFloat treats blank or malformed numeric fields as zero, matching
// the feed's habit of leaving fields empty outside trading hours.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// NormalizeCode converts user input to the exchange-prefixed form the feed
// expects: strip any SH/SZ/BJ prefix, then re-prefix bare digit codes by
// their leading digit (6 → sh, 0/3 → sz, 4/8 → bj).
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, prefix := range []string{"SH", "SZ", "BJ"} {
		if strings.HasPrefix(code, prefix) {
			code = code[len(prefix):]
			break
		}
	}

	if isDigits(code) && code != "" {
		switch code[0] {
		case '6':
			return "sh" + code
		case '0', '3':
			return "sz" + code
		case '4', '8':
			return "bj" + code
		}
	}
	return strings.ToLower(code)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// DailyKLines fetches up to count daily candles, oldest first. Failures
// and unknown codes yield an error; callers treat that as no history.
func (c *Client) DailyKLines(ctx context.Context, code string, count int) ([]model.KLine, error) {
	code = NormalizeCode(code)

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf(c.klineURL, code, count), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: create request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: kline %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: kline %s: unexpected status %d", code, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("fetch: read kline %s: %w", code, err)
	}

	return parseKLines(code, body)
}

// parseKLines decodes the fqkline JSON envelope. Candles arrive as
// [date, open, close, high, low, volume, ...] arrays under data.<code>.qfqday
// (or .day for instruments without adjusted data), oldest first.
func parseKLines(code string, body []byte) ([]model.KLine, error) {
	var envelope struct {
		Data map[string]map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("fetch: kline %s: decode: %w", code, err)
	}

	series, ok := envelope.Data[code]
	if !ok {
		return nil, fmt.Errorf("fetch: kline %s: no data", code)
	}

	var raw [][]json.Number
	for _, key := range []string{"qfqday", "day"} {
		if msg, ok := series[key]; ok {
			dec := json.NewDecoder(strings.NewReader(string(msg)))
			dec.UseNumber()
			// Dates are strings, so decode loosely and coerce below.
			var rows [][]interface{}
			if err := dec.Decode(&rows); err != nil {
				continue
			}
			raw = coerceRows(rows)
			break
		}
	}

	out := make([]model.KLine, 0, len(raw))
	for _, row := range raw {
		if len(row) < 6 {
			continue
		}
		out = append(out, model.KLine{
			Date:   row[0].String(),
			Open:   numToFloat(row[1]),
			Close:  numToFloat(row[2]),
			High:   numToFloat(row[3]),
			Low:    numToFloat(row[4]),
			Volume: numToFloat(row[5]),
		})
	}
	return out, nil
}

func coerceRows(rows [][]interface{}) [][]json.Number {
	out := make([][]json.Number, 0, len(rows))
	for _, row := range rows {
		nums := make([]json.Number, 0, len(row))
		for _, cell := range row {
			switch v := cell.(type) {
			case json.Number:
				nums = append(nums, v)
			case string:
				nums = append(nums, json.Number(v))
			default:
				nums = append(nums, json.Number(""))
			}
		}
		out = append(out, nums)
	}
	return out
}

func numToFloat(n json.Number) float64 {
	v, err := n.Float64()
	if err != nil {
		return 0
	}
	return v
}
