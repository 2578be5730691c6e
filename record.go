package stockinfo

import "fmt"

var RecordHeader = []string{
	"Stock Symbol",
	"Company Name",
	"Next Earnings Report Date",
	"Dividend Offered",
	"Ex-Dividend Date",
	"Annual Dividend Yield",
}

type Record struct {
	Symbol              string
	CompanyName         string
	NextEarningsDate    string
	DividendOffered     string
	ExDividendDate      string
	AnnualDividendYield string
}

// UnavailableRecord is the record of a symbol whose processing failed as a
// whole.
func UnavailableRecord(symbol string) *Record {
	return &Record{
		Symbol:              symbol,
		CompanyName:         NotAvailable,
		NextEarningsDate:    NotAvailable,
		DividendOffered:     NotAvailable,
		ExDividendDate:      NotAvailable,
		AnnualDividendYield: NotAvailable,
	}
}

// Values returns the fields in RecordHeader order.
func (r *Record) Values() []string {
	return []string{
		r.Symbol,
		r.CompanyName,
		r.NextEarningsDate,
		r.DividendOffered,
		r.ExDividendDate,
		r.AnnualDividendYield,
	}
}

func ParseRecord(values []string) (*Record, error) {
	if len(values) != len(RecordHeader) {
		return nil, fmt.Errorf(
			"invalid record: %v fields, want %v",
			len(values),
			len(RecordHeader),
		)
	}
	return &Record{
		Symbol:              values[0],
		CompanyName:         values[1],
		NextEarningsDate:    values[2],
		DividendOffered:     values[3],
		ExDividendDate:      values[4],
		AnnualDividendYield: values[5],
	}, nil
}
