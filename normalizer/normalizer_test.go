package normalizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"szakszon.com/stockinfo"
	"szakszon.com/stockinfo/mock"
)

var now = time.Date(2025, 1, 15, 12, 0, 0, 0, stockinfo.ExchangeLocation)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Logf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

type fixture struct {
	profile  *mock.MockProfileService
	calendar *mock.MockCalendarService
	earnings *mock.MockEarningsDateService
	dividend *mock.MockDividendService
	log      *recordingLogger
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return &fixture{
		profile:  mock.NewMockProfileService(ctrl),
		calendar: mock.NewMockCalendarService(ctrl),
		earnings: mock.NewMockEarningsDateService(ctrl),
		dividend: mock.NewMockDividendService(ctrl),
		log:      &recordingLogger{},
	}
}

func (f *fixture) normalizer(os ...Option) *Normalizer {
	opts := []Option{
		ProfileService(f.profile),
		CalendarService(f.calendar),
		EarningsDateService(f.earnings),
		DividendService(f.dividend),
		Clock(func() time.Time { return now }),
		Log(f.log),
	}
	return NewNormalizer(append(opts, os...)...)
}

func (f *fixture) expectProfile(name string, price float64) {
	f.profile.EXPECT().
		Fetch(gomock.Any(), &stockinfo.ProfileFetchInput{Symbol: "AAPL"}).
		Return(&stockinfo.ProfileFetchOutput{
			Profile: &stockinfo.Profile{
				Symbol:       "AAPL",
				ShortName:    null.StringFrom(name),
				CurrentPrice: null.FloatFrom(price),
			},
		}, nil)
}

func (f *fixture) expectCalendar(ts ...stockinfo.Timestamp) {
	c := &stockinfo.Calendar{}
	if len(ts) > 0 {
		c.Add(stockinfo.CalendarEarningsDate, ts...)
	}
	f.calendar.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		Return(&stockinfo.CalendarFetchOutput{Calendar: c}, nil)
}

func (f *fixture) expectEarningsDates(ts ...stockinfo.Timestamp) {
	out := &stockinfo.EarningsDateFetchOutput{}
	for _, t := range ts {
		out.EarningsDates = append(
			out.EarningsDates,
			&stockinfo.EarningsDate{Date: t},
		)
	}
	f.earnings.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(out, nil)
}

func (f *fixture) expectDividends(lastPrice null.Float, divs ...*stockinfo.Dividend) {
	f.dividend.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		Return(&stockinfo.DividendFetchOutput{
			Dividends: divs,
			LastPrice: lastPrice,
		}, nil)
}

func dividend(date string, amount string) *stockinfo.Dividend {
	t, err := time.ParseInLocation(stockinfo.DateFormat, date, time.UTC)
	if err != nil {
		panic(err)
	}
	return &stockinfo.Dividend{
		Date:   stockinfo.Naive(t),
		Amount: decimal.RequireFromString(amount),
	}
}

func zoned(s string) stockinfo.Timestamp {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return stockinfo.Zoned(t)
}

func naive(s string) stockinfo.Timestamp {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return stockinfo.Naive(t)
}

func TestNormalizeCalendarEarningsDate(t *testing.T) {
	f := newFixture(t)
	f.expectProfile("Apple Inc.", 200)
	f.expectCalendar(naive("2025-01-30 00:00"), naive("2025-02-03 00:00"))
	f.expectDividends(null.Float{})

	got := f.normalizer().Normalize(context.Background(), "AAPL")

	assert.Equal(t, &stockinfo.Record{
		Symbol:              "AAPL",
		CompanyName:         "Apple Inc.",
		NextEarningsDate:    "2025-01-30",
		DividendOffered:     stockinfo.No,
		ExDividendDate:      stockinfo.NotAvailable,
		AnnualDividendYield: stockinfo.NotAvailable,
	}, got)
}

func TestNormalizeEarningsDateFallback(t *testing.T) {
	tests := []struct {
		name        string
		calendarErr error
		dates       []stockinfo.Timestamp
		want        string
	}{
		{
			name: "earliest future date",
			dates: []stockinfo.Timestamp{
				naive("2025-07-31 16:00"),
				naive("2024-10-31 16:00"),
				naive("2025-04-30 16:00"),
				naive("2025-01-14 16:00"),
			},
			want: "2025-04-30",
		},
		{
			name:        "calendar failure",
			calendarErr: errors.New("boom"),
			dates: []stockinfo.Timestamp{
				zoned("2025-01-30T21:00:00Z"),
			},
			want: "2025-01-30",
		},
		{
			name: "naive and zoned mixed",
			dates: []stockinfo.Timestamp{
				zoned("2025-02-20T21:00:00Z"),
				naive("2025-02-10 08:00"),
			},
			want: "2025-02-10",
		},
		{
			name: "only past dates",
			dates: []stockinfo.Timestamp{
				naive("2024-10-31 16:00"),
				naive("2025-01-15 11:59"),
			},
			want: stockinfo.NotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectProfile("Apple Inc.", 200)
			if tt.calendarErr != nil {
				f.calendar.EXPECT().
					Fetch(gomock.Any(), gomock.Any()).
					Return(nil, tt.calendarErr)
			} else {
				f.expectCalendar()
			}
			f.expectEarningsDates(tt.dates...)
			f.expectDividends(null.Float{})

			got := f.normalizer().Normalize(context.Background(), "AAPL")
			assert.Equal(t, tt.want, got.NextEarningsDate)
		})
	}
}

func TestNormalizeEarningsSourcesFail(t *testing.T) {
	f := newFixture(t)
	f.expectProfile("Apple Inc.", 200)
	f.calendar.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("calendar down"))
	f.earnings.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("table down"))
	f.expectDividends(null.Float{})

	got := f.normalizer().Normalize(context.Background(), "AAPL")

	assert.Equal(t, stockinfo.NotAvailable, got.NextEarningsDate)
	assert.Equal(t, "Apple Inc.", got.CompanyName)
	assert.True(t, f.log.contains("Error getting earnings date for AAPL: table down"))
}

func TestNormalizeDividends(t *testing.T) {
	f := newFixture(t)
	f.expectProfile("Apple Inc.", 100)
	f.expectCalendar(naive("2025-01-30 00:00"))
	f.expectDividends(
		null.Float{},
		dividend("2024-11-08", "0.25"),
		dividend("2024-02-09", "0.24"),
		dividend("2024-05-10", "0.25"),
		dividend("2024-08-12", "0.25"),
		dividend("2023-11-10", "0.24"),
	)

	got := f.normalizer().Normalize(context.Background(), "AAPL")

	assert.Equal(t, stockinfo.Yes, got.DividendOffered)
	assert.Equal(t, "2024-11-08", got.ExDividendDate)
	// 0.24 + 0.25 + 0.25 + 0.25
	assert.Equal(t, "0.99%", got.AnnualDividendYield)
}

func TestNormalizeProfileFailure(t *testing.T) {
	f := newFixture(t)
	f.profile.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("rate limited"))
	f.expectCalendar()
	f.expectEarningsDates()
	f.expectDividends(
		null.FloatFrom(100),
		dividend("2024-06-01", "0.50"),
		dividend("2024-12-01", "0.50"),
	)

	got := f.normalizer().Normalize(context.Background(), "AAPL")

	assert.Equal(t, &stockinfo.Record{
		Symbol:              "AAPL",
		CompanyName:         stockinfo.NotAvailable,
		NextEarningsDate:    stockinfo.NotAvailable,
		DividendOffered:     stockinfo.Yes,
		ExDividendDate:      "2024-12-01",
		AnnualDividendYield: "2.00%",
	}, got)
	assert.True(t, f.log.contains("Error getting info for AAPL: rate limited"))
}

func TestNormalizeNoPrice(t *testing.T) {
	f := newFixture(t)
	f.profile.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		Return(&stockinfo.ProfileFetchOutput{
			Profile: &stockinfo.Profile{
				Symbol:    "AAPL",
				ShortName: null.StringFrom("Apple Inc."),
			},
		}, nil)
	f.expectCalendar(naive("2025-01-30 00:00"))
	f.expectDividends(null.Float{}, dividend("2024-12-01", "0.50"))

	got := f.normalizer().Normalize(context.Background(), "AAPL")

	assert.Equal(t, stockinfo.Yes, got.DividendOffered)
	assert.Equal(t, "2024-12-01", got.ExDividendDate)
	assert.Equal(t, stockinfo.NotAvailable, got.AnnualDividendYield)
}

func TestNormalizeNoDividends(t *testing.T) {
	f := newFixture(t)
	f.expectProfile("Tesla, Inc.", 400)
	f.expectCalendar(naive("2025-01-29 00:00"))
	f.expectDividends(null.FloatFrom(400))

	got := f.normalizer().Normalize(context.Background(), "AAPL")

	assert.Equal(t, stockinfo.No, got.DividendOffered)
	assert.Equal(t, stockinfo.NotAvailable, got.ExDividendDate)
	assert.Equal(t, stockinfo.NotAvailable, got.AnnualDividendYield)
}

func TestNormalizeDividendFailure(t *testing.T) {
	tests := []struct {
		name    string
		unknown bool
		want    string
	}{
		{name: "reported as no", want: stockinfo.No},
		{name: "reported as unknown", unknown: true, want: stockinfo.NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectProfile("Apple Inc.", 100)
			f.expectCalendar(naive("2025-01-30 00:00"))
			f.dividend.EXPECT().
				Fetch(gomock.Any(), gomock.Any()).
				Return(nil, errors.New("timeout"))

			got := f.normalizer(UnknownDividendStatus(tt.unknown)).
				Normalize(context.Background(), "AAPL")

			assert.Equal(t, tt.want, got.DividendOffered)
			assert.Equal(t, stockinfo.NotAvailable, got.ExDividendDate)
			assert.Equal(t, stockinfo.NotAvailable, got.AnnualDividendYield)
			assert.True(t, f.log.contains("Error getting dividend info for AAPL: timeout"))
		})
	}
}

func TestNormalizeAllFacetsFail(t *testing.T) {
	noDividends := stockinfo.UnavailableRecord("AAPL")
	noDividends.DividendOffered = stockinfo.No

	tests := []struct {
		name    string
		unknown bool
		want    *stockinfo.Record
	}{
		{name: "default", want: noDividends},
		{name: "unknown dividend status", unknown: true, want: stockinfo.UnavailableRecord("AAPL")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.profile.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, errors.New("a"))
			f.calendar.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, errors.New("b"))
			f.earnings.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, errors.New("c"))
			f.dividend.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, errors.New("d"))

			got := f.normalizer(UnknownDividendStatus(tt.unknown)).
				Normalize(context.Background(), "AAPL")

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeFutureFilter(t *testing.T) {
	f := newFixture(t)
	f.expectProfile("Apple Inc.", 100)
	// 200 days ahead
	f.expectCalendar(zoned("2025-08-03T16:00:00Z"))
	f.expectDividends(
		null.Float{},
		dividend("2024-12-01", "0.50"),
		dividend("2025-09-01", "0.50"),
	)

	got := f.normalizer().Normalize(context.Background(), "AAPL")

	assert.Equal(t, stockinfo.NotAvailable, got.NextEarningsDate)
	assert.Equal(t, stockinfo.NotAvailable, got.ExDividendDate)
	assert.Equal(t, stockinfo.Yes, got.DividendOffered)
	assert.Equal(t, "2.00%", got.AnnualDividendYield)
}

func TestNormalizeFutureFilterBoundary(t *testing.T) {
	f := newFixture(t)
	f.expectProfile("Apple Inc.", 100)
	f.expectCalendar(naive("2025-07-14 12:00"))
	f.expectDividends(null.Float{}, dividend("2025-07-14", "1"))

	got := f.normalizer().Normalize(context.Background(), "AAPL")

	assert.Equal(t, "2025-07-14", got.NextEarningsDate)
	assert.Equal(t, "2025-07-14", got.ExDividendDate)
}

func TestNormalizeRecoversPanic(t *testing.T) {
	f := newFixture(t)
	f.profile.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(
			ctx context.Context,
			in *stockinfo.ProfileFetchInput,
		) (*stockinfo.ProfileFetchOutput, error) {
			panic("unexpected shape")
		})

	got := f.normalizer().Normalize(context.Background(), "AAPL")

	assert.Equal(t, stockinfo.UnavailableRecord("AAPL"), got)
	assert.True(t, f.log.contains("Failed to process AAPL: unexpected shape"))
}

func TestNormalizeWithoutServices(t *testing.T) {
	log := &recordingLogger{}
	n := NewNormalizer(
		Clock(func() time.Time { return now }),
		Log(log),
	)

	got := n.Normalize(context.Background(), "MSFT")

	assert.Equal(t, &stockinfo.Record{
		Symbol:              "MSFT",
		CompanyName:         stockinfo.NotAvailable,
		NextEarningsDate:    stockinfo.NotAvailable,
		DividendOffered:     stockinfo.No,
		ExDividendDate:      stockinfo.NotAvailable,
		AnnualDividendYield: stockinfo.NotAvailable,
	}, got)
}
