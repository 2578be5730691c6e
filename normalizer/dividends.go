package normalizer

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"szakszon.com/stockinfo"
)

var (
	four    = decimal.NewFromInt(4)
	hundred = decimal.NewFromInt(100)
)

func (n *Normalizer) dividends(
	ctx context.Context,
	symbol string,
	profile *stockinfo.Profile,
	f *facets,
) {
	failed := func(err error) {
		n.logf("Error getting dividend info for %v: %v", symbol, err)
		if n.opts.unknownDividendStatus {
			f.dividendOffered = stockinfo.NotAvailable
		}
	}

	if n.opts.dividendService == nil {
		failed(errNoService)
		return
	}

	out, err := n.opts.dividendService.Fetch(
		ctx,
		&stockinfo.DividendFetchInput{Symbol: symbol},
	)
	if err != nil {
		failed(err)
		return
	}
	if out == nil {
		return
	}

	divs := sortedDividends(out.Dividends, n.opts.location)
	if len(divs) == 0 {
		return
	}
	f.dividendOffered = stockinfo.Yes

	price, ok := LatestPrice(profile, out)
	if ok {
		y := Yield(AnnualRate(divs), price)
		if y.IsPositive() {
			f.yield = y.StringFixed(2) + "%"
		}
	}

	last := divs[len(divs)-1].Date
	f.exDividendDate = &last
}

func sortedDividends(
	divs []*stockinfo.Dividend,
	loc *time.Location,
) []*stockinfo.Dividend {
	sorted := make([]*stockinfo.Dividend, 0, len(divs))
	for _, d := range divs {
		if d != nil && !d.Date.IsZero() {
			sorted = append(sorted, d)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.In(loc).Before(sorted[j].Date.In(loc))
	})
	return sorted
}

// AnnualRate sums the four most recent payments. Shorter histories are
// scaled up to four payments. divs must be sorted ascending.
func AnnualRate(divs []*stockinfo.Dividend) decimal.Decimal {
	if len(divs) == 0 {
		return decimal.Zero
	}

	recent := divs
	if len(recent) > 4 {
		recent = recent[len(recent)-4:]
	}
	sum := decimal.Zero
	for _, d := range recent {
		sum = sum.Add(d.Amount)
	}
	if len(recent) == 4 {
		return sum
	}
	return sum.Mul(four).Div(decimal.NewFromInt(int64(len(recent))))
}

// Yield returns rate as a percentage of price.
func Yield(rate, price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return rate.Div(price).Mul(hundred)
}

// LatestPrice prefers the current price of the profile, then its regular
// market price, then the quote reported with the dividend history.
func LatestPrice(
	profile *stockinfo.Profile,
	div *stockinfo.DividendFetchOutput,
) (decimal.Decimal, bool) {
	candidates := make([]float64, 0, 3)
	if profile != nil {
		if profile.CurrentPrice.Valid {
			candidates = append(candidates, profile.CurrentPrice.Float64)
		}
		if profile.RegularMarketPrice.Valid {
			candidates = append(candidates, profile.RegularMarketPrice.Float64)
		}
	}
	if div != nil && div.LastPrice.Valid {
		candidates = append(candidates, div.LastPrice.Float64)
	}

	for _, v := range candidates {
		if v > 0 {
			return decimal.NewFromFloat(v), true
		}
	}
	return decimal.Zero, false
}
