package csvfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"szakszon.com/stockinfo"
)

var records = []*stockinfo.Record{
	{
		Symbol:              "AAPL",
		CompanyName:         "Apple Inc.",
		NextEarningsDate:    "2025-01-30",
		DividendOffered:     "Yes",
		ExDividendDate:      "2024-11-08",
		AnnualDividendYield: "0.43%",
	},
	{
		Symbol:              "V",
		CompanyName:         "Visa Inc., Class A",
		NextEarningsDate:    "N/A",
		DividendOffered:     "Yes",
		ExDividendDate:      "2024-11-12",
		AnnualDividendYield: "0.75%",
	},
	stockinfo.UnavailableRecord("NFLX"),
}

func TestWriteRecords(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteRecords(buf, records[:2], ',')
	require.NoError(t, err)

	want := "Stock Symbol,Company Name,Next Earnings Report Date," +
		"Dividend Offered,Ex-Dividend Date,Annual Dividend Yield\n" +
		"AAPL,Apple Inc.,2025-01-30,Yes,2024-11-08,0.43%\n" +
		"V,\"Visa Inc., Class A\",N/A,Yes,2024-11-12,0.75%\n"
	assert.Equal(t, want, buf.String())
}

func TestWriterRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out", "stock_data.csv")
	w := NewWriter(Path(p))

	err := w.Write(context.Background(), records)
	require.NoError(t, err)

	got, err := Read(p, ',')
	require.NoError(t, err)
	assert.Equal(t, records, got)

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriterReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "stock_data.csv")
	w := NewWriter(Path(p), Comma(';'))

	require.NoError(t, w.Write(context.Background(), records))
	require.NoError(t, w.Write(context.Background(), records[2:]))

	got, err := Read(p, ';')
	require.NoError(t, err)
	assert.Equal(t, records[2:], got)
}

func TestWriterCanceled(t *testing.T) {
	p := filepath.Join(t.TempDir(), "stock_data.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWriter(Path(p)).Write(ctx, records)
	assert.Error(t, err)
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
}

func TestReadRecordsInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "wrong header", in: "a,b,c,d,e,f\n"},
		{name: "short header", in: "Stock Symbol,Company Name\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRecords(strings.NewReader(tt.in), ',')
			assert.Error(t, err)
		})
	}
}
