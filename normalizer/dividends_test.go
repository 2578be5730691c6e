package normalizer

import (
	"testing"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"szakszon.com/stockinfo"
)

func TestAnnualRate(t *testing.T) {
	tests := []struct {
		name string
		divs []*stockinfo.Dividend
		want string
	}{
		{
			name: "empty",
			want: "0",
		},
		{
			name: "one payment",
			divs: []*stockinfo.Dividend{dividend("2024-12-01", "0.5")},
			want: "2",
		},
		{
			name: "three payments",
			divs: []*stockinfo.Dividend{
				dividend("2024-06-01", "0.5"),
				dividend("2024-09-01", "0.5"),
				dividend("2024-12-01", "0.5"),
			},
			want: "2",
		},
		{
			name: "four payments",
			divs: []*stockinfo.Dividend{
				dividend("2024-03-01", "0.2"),
				dividend("2024-06-01", "0.3"),
				dividend("2024-09-01", "0.4"),
				dividend("2024-12-01", "0.5"),
			},
			want: "1.4",
		},
		{
			name: "most recent four",
			divs: []*stockinfo.Dividend{
				dividend("2023-03-01", "1"),
				dividend("2023-06-01", "1"),
				dividend("2024-03-01", "2"),
				dividend("2024-06-01", "2"),
				dividend("2024-09-01", "2"),
				dividend("2024-12-01", "2"),
			},
			want: "8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnnualRate(tt.divs)
			assert.True(t,
				decimal.RequireFromString(tt.want).Equal(got),
				"got %v, want %v", got, tt.want,
			)
		})
	}
}

func TestYield(t *testing.T) {
	got := Yield(decimal.RequireFromString("2"), decimal.NewFromInt(100))
	assert.Equal(t, "2.00", got.StringFixed(2))

	got = Yield(decimal.RequireFromString("0.96"), decimal.RequireFromString("229.87"))
	assert.Equal(t, "0.42", got.StringFixed(2))

	assert.True(t, Yield(decimal.NewFromInt(1), decimal.Zero).IsZero())
}

func TestLatestPrice(t *testing.T) {
	tests := []struct {
		name    string
		profile *stockinfo.Profile
		div     *stockinfo.DividendFetchOutput
		want    float64
		ok      bool
	}{
		{
			name: "current price",
			profile: &stockinfo.Profile{
				CurrentPrice:       null.FloatFrom(10),
				RegularMarketPrice: null.FloatFrom(11),
			},
			want: 10,
			ok:   true,
		},
		{
			name: "regular market price",
			profile: &stockinfo.Profile{
				RegularMarketPrice: null.FloatFrom(11),
			},
			div:  &stockinfo.DividendFetchOutput{LastPrice: null.FloatFrom(12)},
			want: 11,
			ok:   true,
		},
		{
			name:    "zero current price",
			profile: &stockinfo.Profile{CurrentPrice: null.FloatFrom(0)},
			div:     &stockinfo.DividendFetchOutput{LastPrice: null.FloatFrom(12)},
			want:    12,
			ok:      true,
		},
		{
			name:    "none",
			profile: &stockinfo.Profile{},
			div:     &stockinfo.DividendFetchOutput{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LatestPrice(tt.profile, tt.div)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, decimal.NewFromFloat(tt.want).Equal(got))
			}
		})
	}
}
