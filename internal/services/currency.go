package services

import (
	"context"
	"net/url"
	"strings"
)

// RatesSnapshot maps currency codes to units per one Base.
type RatesSnapshot struct {
	Base  string
	Rates map[string]float64
}

// Convert returns amount in target units. ok is false when the rate is missing.
func (r *RatesSnapshot) Convert(amount float64, target string) (converted, rate float64, ok bool) {
	rate, ok = r.Rates[strings.ToUpper(target)]
	if !ok {
		return 0, 0, false
	}
	return amount * rate, rate, true
}

type erAPIResponse struct {
	Result string              `json:"result"`
	Rates  *map[string]float64 `json:"rates"`
}

func (c *Client) Rates(ctx context.Context, base string) (*RatesSnapshot, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		return nil, unavailable("currency", "no base currency")
	}

	var resp erAPIResponse
	if err := c.getJSON(ctx, "currency", c.opts.CurrencyURL+"/"+url.PathEscape(base), &resp); err != nil {
		return nil, err
	}
	if resp.Result != "" && resp.Result != "success" {
		return nil, unavailable("currency", "result "+resp.Result)
	}
	if resp.Rates == nil || len(*resp.Rates) == 0 {
		return nil, unavailable("currency", "missing rates")
	}
	return &RatesSnapshot{Base: base, Rates: *resp.Rates}, nil
}
