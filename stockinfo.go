// Package stockinfo defines the record produced for every ticker symbol and
// the upstream services the normalizer reads from.
package stockinfo

//go:generate mockgen -destination=mock/mock_stockinfo.go -package=mock szakszon.com/stockinfo ProfileService,CalendarService,EarningsDateService,DividendService

import (
	"context"
	"time"
	_ "time/tzdata"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

const DateFormat = "2006-01-02"

// NotAvailable is written for every field that could not be resolved.
const NotAvailable = "N/A"

const (
	Yes = "Yes"
	No  = "No"
)

// Labels of the calendar-style earnings source.
const (
	CalendarEarningsDate   = "Earnings Date"
	CalendarExDividendDate = "Ex-Dividend Date"
	CalendarDividendDate   = "Dividend Date"
)

// ExchangeLocation is the zone US listings report in.
var ExchangeLocation = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

type ProfileService interface {
	Fetch(
		ctx context.Context,
		in *ProfileFetchInput,
	) (*ProfileFetchOutput, error)
}

type ProfileFetchInput struct {
	Symbol string
}

type ProfileFetchOutput struct {
	Profile *Profile
}

type Profile struct {
	Symbol             string
	ShortName          null.String
	CurrentPrice       null.Float
	RegularMarketPrice null.Float
}

type CalendarService interface {
	Fetch(
		ctx context.Context,
		in *CalendarFetchInput,
	) (*CalendarFetchOutput, error)
}

type CalendarFetchInput struct {
	Symbol string
}

type CalendarFetchOutput struct {
	Calendar *Calendar
}

// Calendar holds one row of values per label.
type Calendar struct {
	Rows map[string][]Timestamp
}

func (c *Calendar) First(label string) (Timestamp, bool) {
	if c == nil {
		return Timestamp{}, false
	}
	vs := c.Rows[label]
	if len(vs) == 0 {
		return Timestamp{}, false
	}
	return vs[0], true
}

func (c *Calendar) Add(label string, ts ...Timestamp) {
	if c.Rows == nil {
		c.Rows = make(map[string][]Timestamp)
	}
	c.Rows[label] = append(c.Rows[label], ts...)
}

type EarningsDateService interface {
	Fetch(
		ctx context.Context,
		in *EarningsDateFetchInput,
	) (*EarningsDateFetchOutput, error)
}

type EarningsDateFetchInput struct {
	Symbol string
}

type EarningsDateFetchOutput struct {
	EarningsDates []*EarningsDate
}

type EarningsDate struct {
	Date        Timestamp
	EPSEstimate null.Float
	ReportedEPS null.Float
}

type DividendService interface {
	Fetch(
		ctx context.Context,
		in *DividendFetchInput,
	) (*DividendFetchOutput, error)
}

type DividendFetchInput struct {
	Symbol string
}

type DividendFetchOutput struct {
	Dividends []*Dividend

	// LastPrice is the quote reported next to the history, if any.
	LastPrice null.Float
}

type Dividend struct {
	Date   Timestamp
	Amount decimal.Decimal
}

type RecordWriter interface {
	Write(ctx context.Context, records []*Record) error
}
