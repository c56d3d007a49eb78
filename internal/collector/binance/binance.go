package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/tradelab/internal/core"
	"github.com/shopspring/decimal"
)

const (
	baseURL = "https://api.binance.com"

	// maxKlines is the largest page the klines endpoint returns.
	maxKlines = 1000
)

// Binance implements the Collector interface for Binance spot klines
type Binance struct {
	client  *http.Client
	baseURL string
}

// New creates a new Binance collector
func New() *Binance {
	return &Binance{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// NewWithBaseURL creates a Binance collector with custom base URL (for testing)
func NewWithBaseURL(url string) *Binance {
	b := New()
	b.baseURL = url
	return b
}

func (b *Binance) Name() string {
	return "binance"
}

// FetchHistory fetches daily klines, paging until end is reached.
func (b *Binance) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.TickerInput, error) {
	if symbol == "" {
		return nil, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("symbol cannot be empty"))
	}

	var data []core.TickerInput
	from := start
	for {
		page, err := b.fetchPage(ctx, symbol, from, end)
		if err != nil {
			return nil, err
		}
		data = append(data, page...)
		if len(page) < maxKlines {
			break
		}
		from = page[len(page)-1].Datetime.Add(time.Millisecond)
	}

	if data == nil {
		data = []core.TickerInput{}
	}
	return data, nil
}

func (b *Binance) fetchPage(ctx context.Context, symbol string, start, end time.Time) ([]core.TickerInput, error) {
	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=1d&startTime=%d&endTime=%d&limit=%d",
		b.baseURL, symbol, start.UnixMilli(), end.UnixMilli(), maxKlines)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var klines [][]any
	if err := json.NewDecoder(resp.Body).Decode(&klines); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	data := make([]core.TickerInput, 0, len(klines))
	for _, k := range klines {
		rec, ok := parseKline(k)
		if !ok {
			continue
		}
		data = append(data, rec)
	}
	return data, nil
}

// parseKline decodes [openTime, open, high, low, close, volume, ...].
// Binance sends prices and volume as decimal strings.
func parseKline(k []any) (core.TickerInput, bool) {
	if len(k) < 6 {
		return core.TickerInput{}, false
	}
	openTime, ok := k[0].(float64)
	if !ok {
		return core.TickerInput{}, false
	}

	var vals [5]decimal.Decimal
	for i := range vals {
		s, ok := k[i+1].(string)
		if !ok {
			return core.TickerInput{}, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return core.TickerInput{}, false
		}
		vals[i] = d
	}

	return core.TickerInput{
		Datetime: time.UnixMilli(int64(openTime)).UTC(),
		Open:     vals[0].InexactFloat64(),
		High:     vals[1].InexactFloat64(),
		Low:      vals[2].InexactFloat64(),
		Close:    vals[3].InexactFloat64(),
		Volume:   vals[4].IntPart(),
	}, true
}
