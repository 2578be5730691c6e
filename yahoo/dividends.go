package yahoo

import (
	"context"
	"sort"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
	"szakszon.com/stockinfo"
)

func (c *Yahoo) NewDividendService() stockinfo.DividendService {
	return &dividendService{
		Yahoo: c,
	}
}

type dividendService struct {
	*Yahoo
}

func (s *dividendService) Fetch(
	ctx context.Context,
	in *stockinfo.DividendFetchInput,
) (*stockinfo.DividendFetchOutput, error) {
	var v chartResponse
	err := s.getJSON(ctx, "chart", func(crumb string) string {
		return s.chartURL(in.Symbol, crumb)
	}, &v)
	if err != nil {
		return nil, err
	}
	err = v.Chart.Error.apiError("chart")
	if err != nil {
		return nil, err
	}

	out := &stockinfo.DividendFetchOutput{
		Dividends: make([]*stockinfo.Dividend, 0),
	}
	if len(v.Chart.Result) == 0 || v.Chart.Result[0] == nil {
		return out, nil
	}

	res := v.Chart.Result[0]
	out.LastPrice = res.Meta.RegularMarketPrice
	for _, d := range res.Events.Dividends {
		if d.Date <= 0 {
			continue
		}
		out.Dividends = append(out.Dividends, &stockinfo.Dividend{
			Date:   stockinfo.Zoned(time.Unix(d.Date, 0).UTC()),
			Amount: d.Amount,
		})
	}
	sortDividendsAsc(out.Dividends)

	return out, nil
}

func sortDividendsAsc(a []*stockinfo.Dividend) {
	sort.SliceStable(a, func(i, j int) bool {
		return a[i].Date.Time.Before(a[j].Date.Time)
	})
}

type chartResponse struct {
	Chart struct {
		Result []*chartResult `json:"result"`
		Error  *errorBody     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		RegularMarketPrice null.Float `json:"regularMarketPrice"`
	} `json:"meta"`

	Events struct {
		// keyed by the payment epoch as a string
		Dividends map[string]struct {
			Amount decimal.Decimal `json:"amount"`
			Date   int64           `json:"date"`
		} `json:"dividends"`
	} `json:"events"`
}
