package normalizer

import (
	"context"
	"errors"
	"time"

	"szakszon.com/stockinfo"
	"szakszon.com/stockinfo/logger"
)

type Normalizer struct {
	opts     options
	attempts []earningsAttempt
}

func NewNormalizer(os ...Option) *Normalizer {
	opts := defaultOptions
	for _, o := range os {
		opts = o(opts)
	}

	n := &Normalizer{opts: opts}
	n.attempts = []earningsAttempt{
		n.calendarEarningsDate,
		n.upcomingEarningsDate,
	}
	return n
}

// Normalize builds the record of symbol. Facets that cannot be resolved are
// reported as stockinfo.NotAvailable, the call itself never fails.
func (n *Normalizer) Normalize(
	ctx context.Context,
	symbol string,
) (rec *stockinfo.Record) {
	defer func() {
		if r := recover(); r != nil {
			n.logf("Failed to process %v: %v", symbol, r)
			rec = stockinfo.UnavailableRecord(symbol)
		}
	}()

	now := n.opts.clock().In(n.opts.location)
	f := &facets{dividendOffered: stockinfo.No}

	profile := n.profile(ctx, symbol)
	if profile.ShortName.Valid && profile.ShortName.String != "" {
		f.companyName = profile.ShortName.String
	}

	f.earningsDate = n.earningsDate(ctx, symbol, now)
	n.dividends(ctx, symbol, profile, f)
	n.filterFuture(f, now)

	return f.record(symbol, n.opts.location)
}

func (n *Normalizer) profile(
	ctx context.Context,
	symbol string,
) *stockinfo.Profile {
	empty := &stockinfo.Profile{Symbol: symbol}
	if n.opts.profileService == nil {
		n.logf("Error getting info for %v: %v", symbol, errNoService)
		return empty
	}

	out, err := n.opts.profileService.Fetch(
		ctx,
		&stockinfo.ProfileFetchInput{Symbol: symbol},
	)
	if err != nil {
		n.logf("Error getting info for %v: %v", symbol, err)
		return empty
	}
	if out == nil || out.Profile == nil {
		return empty
	}
	return out.Profile
}

// filterFuture drops dates too far ahead to be trusted.
func (n *Normalizer) filterFuture(f *facets, now time.Time) {
	limit := now.AddDate(0, 0, n.opts.maxFutureDays)

	if f.earningsDate != nil &&
		f.earningsDate.In(n.opts.location).After(limit) {
		f.earningsDate = nil
	}

	if f.exDividendDate != nil {
		d := stockinfo.Midnight(f.exDividendDate.In(n.opts.location))
		if d.After(limit) {
			f.exDividendDate = nil
		}
	}
}

func (n *Normalizer) logf(format string, v ...interface{}) {
	if n.opts.logger != nil {
		n.opts.logger.Logf(format, v...)
	}
}

type facets struct {
	companyName     string
	earningsDate    *stockinfo.Timestamp
	dividendOffered string
	exDividendDate  *stockinfo.Timestamp
	yield           string
}

func (f *facets) record(
	symbol string,
	loc *time.Location,
) *stockinfo.Record {
	rec := &stockinfo.Record{
		Symbol:              symbol,
		CompanyName:         stockinfo.NotAvailable,
		NextEarningsDate:    stockinfo.NotAvailable,
		DividendOffered:     f.dividendOffered,
		ExDividendDate:      stockinfo.NotAvailable,
		AnnualDividendYield: stockinfo.NotAvailable,
	}
	if f.companyName != "" {
		rec.CompanyName = f.companyName
	}
	if f.earningsDate != nil {
		rec.NextEarningsDate = f.earningsDate.Date(loc)
	}
	if f.exDividendDate != nil {
		rec.ExDividendDate = f.exDividendDate.Date(loc)
	}
	if f.yield != "" {
		rec.AnnualDividendYield = f.yield
	}
	return rec
}

type options struct {
	profileService      stockinfo.ProfileService
	calendarService     stockinfo.CalendarService
	earningsDateService stockinfo.EarningsDateService
	dividendService     stockinfo.DividendService

	location              *time.Location
	clock                 func() time.Time
	maxFutureDays         int
	unknownDividendStatus bool
	logger                logger.Logger
}

var defaultOptions = options{
	location:      stockinfo.ExchangeLocation,
	clock:         time.Now,
	maxFutureDays: 180,
}

type Option func(o options) options

func ProfileService(v stockinfo.ProfileService) Option {
	return func(o options) options {
		o.profileService = v
		return o
	}
}

func CalendarService(v stockinfo.CalendarService) Option {
	return func(o options) options {
		o.calendarService = v
		return o
	}
}

func EarningsDateService(v stockinfo.EarningsDateService) Option {
	return func(o options) options {
		o.earningsDateService = v
		return o
	}
}

func DividendService(v stockinfo.DividendService) Option {
	return func(o options) options {
		o.dividendService = v
		return o
	}
}

// Location sets the exchange zone used for naive timestamps, for "now" and
// for formatting dates.
func Location(v *time.Location) Option {
	return func(o options) options {
		if v != nil {
			o.location = v
		}
		return o
	}
}

func Clock(v func() time.Time) Option {
	return func(o options) options {
		if v != nil {
			o.clock = v
		}
		return o
	}
}

func MaxFutureDays(v int) Option {
	return func(o options) options {
		o.maxFutureDays = v
		return o
	}
}

// UnknownDividendStatus reports "N/A" instead of "No" as dividend status when
// the dividend history cannot be fetched.
func UnknownDividendStatus(v bool) Option {
	return func(o options) options {
		o.unknownDividendStatus = v
		return o
	}
}

func Log(v logger.Logger) Option {
	return func(o options) options {
		o.logger = v
		return o
	}
}

var errNoService = errors.New("service not configured")
