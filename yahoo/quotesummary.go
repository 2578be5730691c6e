package yahoo

import (
	"context"
	"time"

	"github.com/guregu/null/v6"
	"szakszon.com/stockinfo"
)

func (c *Yahoo) NewProfileService() stockinfo.ProfileService {
	return &profileService{
		Yahoo: c,
	}
}

type profileService struct {
	*Yahoo
}

func (s *profileService) Fetch(
	ctx context.Context,
	in *stockinfo.ProfileFetchInput,
) (*stockinfo.ProfileFetchOutput, error) {
	res, err := s.quoteSummary(
		ctx,
		in.Symbol,
		[]string{"price", "financialData"},
	)
	if err != nil {
		return nil, err
	}

	p := &stockinfo.Profile{
		Symbol: in.Symbol,
	}
	if res.Price != nil {
		p.ShortName = res.Price.ShortName
		p.RegularMarketPrice = res.Price.RegularMarketPrice.Raw
	}
	if res.FinancialData != nil {
		p.CurrentPrice = res.FinancialData.CurrentPrice.Raw
	}

	return &stockinfo.ProfileFetchOutput{
		Profile: p,
	}, nil
}

func (c *Yahoo) NewCalendarService() stockinfo.CalendarService {
	return &calendarService{
		Yahoo: c,
	}
}

type calendarService struct {
	*Yahoo
}

func (s *calendarService) Fetch(
	ctx context.Context,
	in *stockinfo.CalendarFetchInput,
) (*stockinfo.CalendarFetchOutput, error) {
	res, err := s.quoteSummary(
		ctx,
		in.Symbol,
		[]string{"calendarEvents"},
	)
	if err != nil {
		return nil, err
	}

	cal := &stockinfo.Calendar{}
	ev := res.CalendarEvents
	if ev != nil {
		for _, d := range ev.Earnings.EarningsDate {
			if ts, ok := d.timestamp(); ok {
				cal.Add(stockinfo.CalendarEarningsDate, ts)
			}
		}
		if ts, ok := ev.ExDividendDate.timestamp(); ok {
			cal.Add(stockinfo.CalendarExDividendDate, ts)
		}
		if ts, ok := ev.DividendDate.timestamp(); ok {
			cal.Add(stockinfo.CalendarDividendDate, ts)
		}
	}

	return &stockinfo.CalendarFetchOutput{
		Calendar: cal,
	}, nil
}

func (c *Yahoo) quoteSummary(
	ctx context.Context,
	symbol string,
	modules []string,
) (*quoteSummaryResult, error) {
	var v quoteSummaryResponse
	err := c.getJSON(ctx, "quoteSummary", func(crumb string) string {
		return c.quoteSummaryURL(symbol, modules, crumb)
	}, &v)
	if err != nil {
		return nil, err
	}

	err = v.QuoteSummary.Error.apiError("quoteSummary")
	if err != nil {
		return nil, err
	}
	if len(v.QuoteSummary.Result) == 0 || v.QuoteSummary.Result[0] == nil {
		return &quoteSummaryResult{}, nil
	}
	return v.QuoteSummary.Result[0], nil
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []*quoteSummaryResult `json:"result"`
		Error  *errorBody            `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price *struct {
		ShortName          null.String `json:"shortName"`
		RegularMarketPrice rawFloat    `json:"regularMarketPrice"`
	} `json:"price"`

	FinancialData *struct {
		CurrentPrice rawFloat `json:"currentPrice"`
	} `json:"financialData"`

	CalendarEvents *struct {
		Earnings struct {
			EarningsDate []rawEpoch `json:"earningsDate"`
		} `json:"earnings"`
		ExDividendDate rawEpoch `json:"exDividendDate"`
		DividendDate   rawEpoch `json:"dividendDate"`
	} `json:"calendarEvents"`
}

// Numbers are wrapped as {"raw": 1.5, "fmt": "1.50"}, or {} when missing.
type rawFloat struct {
	Raw null.Float `json:"raw"`
}

// Dates are epochs paired with their display text. Date-only values come as
// midnight UTC with fmt "2006-01-02" and are calendar dates of the exchange.
type rawEpoch struct {
	Raw null.Int    `json:"raw"`
	Fmt null.String `json:"fmt"`
}

func (e rawEpoch) timestamp() (stockinfo.Timestamp, bool) {
	if !e.Raw.Valid || e.Raw.Int64 <= 0 {
		return stockinfo.Timestamp{}, false
	}
	if e.Fmt.Valid {
		d, err := time.Parse(stockinfo.DateFormat, e.Fmt.String)
		if err == nil {
			return stockinfo.Naive(d), true
		}
	}
	t := time.Unix(e.Raw.Int64, 0).UTC()
	if !e.Fmt.Valid && e.Raw.Int64%secondsPerDay == 0 {
		return stockinfo.Naive(t), true
	}
	return stockinfo.Zoned(t), true
}

const secondsPerDay = 24 * 60 * 60
