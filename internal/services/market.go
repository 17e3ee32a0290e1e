package services

import (
	"context"
	"net/url"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Quote is one instrument's last price and day change. Nil Price/ChangePct
// means the lookup failed and must render as unavailable, never as zero.
type Quote struct {
	Label     string
	Symbol    string
	Price     *float64
	ChangePct *float64
}

func (q Quote) Available() bool { return q.Price != nil && q.ChangePct != nil }

// MarketSnapshot keeps quotes in configured order.
type MarketSnapshot []Quote

// Available returns only the quotes whose lookup succeeded.
func (m MarketSnapshot) Available() []Quote {
	var out []Quote
	for _, q := range m {
		if q.Available() {
			out = append(out, q)
		}
	}
	return out
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// Quote fetches the last two daily closes for one instrument.
func (c *Client) Quote(ctx context.Context, inst config.Instrument) (Quote, error) {
	q := Quote{Label: inst.Label, Symbol: inst.Symbol}

	params := url.Values{}
	params.Set("range", "5d")
	params.Set("interval", "1d")
	rawURL := c.opts.MarketURL + "/" + url.PathEscape(inst.Symbol) + "?" + params.Encode()

	var resp chartResponse
	if err := c.getJSON(ctx, "market", rawURL, &resp); err != nil {
		return q, err
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return q, unavailable("market", "no result for "+inst.Symbol)
	}

	var closes []float64
	for _, v := range resp.Chart.Result[0].Indicators.Quote[0].Close {
		if v != nil {
			closes = append(closes, *v)
		}
	}

	switch {
	case len(closes) >= 2:
		last, prev := closes[len(closes)-1], closes[len(closes)-2]
		if prev == 0 {
			return q, unavailable("market", "zero previous close for "+inst.Symbol)
		}
		change := (last - prev) / prev * 100
		q.Price, q.ChangePct = &last, &change
	case len(closes) == 1:
		// Only one session so far: price without movement
		last, change := closes[0], 0.0
		q.Price, q.ChangePct = &last, &change
	default:
		return q, unavailable("market", "no closes for "+inst.Symbol)
	}
	return q, nil
}

// Markets looks up every instrument. A failed lookup yields an unavailable
// Quote in its slot; the batch itself never fails.
func (c *Client) Markets(ctx context.Context, instruments []config.Instrument) MarketSnapshot {
	out := make(MarketSnapshot, len(instruments))

	var g errgroup.Group
	g.SetLimit(4)
	for i, inst := range instruments {
		g.Go(func() error {
			q, err := c.Quote(ctx, inst)
			if err != nil {
				c.log.Warn("quote unavailable", zap.String("symbol", inst.Symbol), zap.Error(err))
				q = Quote{Label: inst.Label, Symbol: inst.Symbol}
			}
			out[i] = q
			return nil
		})
	}
	_ = g.Wait()
	return out
}
