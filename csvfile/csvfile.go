// Package csvfile stores records as a CSV file with a header row.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"szakszon.com/stockinfo"
	"szakszon.com/stockinfo/logger"
)

type Writer struct {
	opts options
}

func NewWriter(os ...Option) *Writer {
	opts := defaultOptions
	for _, o := range os {
		opts = o(opts)
	}
	return &Writer{opts: opts}
}

// Write replaces the file with records. The file is written next to its
// final path and renamed, so readers never see a partial file.
func (w *Writer) Write(
	ctx context.Context,
	records []*stockinfo.Record,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := w.opts.path
	dir := filepath.Dir(p)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(p)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %v", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	err = WriteRecords(tmp, records, w.opts.comma)
	if err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %v", err)
	}
	if err = os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("rename %v -> %v: %v", tmp.Name(), p, err)
	}

	w.logf("Data saved to %v", p)
	return nil
}

func (w *Writer) logf(format string, v ...interface{}) {
	if w.opts.logger != nil {
		w.opts.logger.Logf(format, v...)
	}
}

func WriteRecords(
	o io.Writer,
	records []*stockinfo.Record,
	comma rune,
) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, stockinfo.RecordHeader)
	for _, r := range records {
		rows = append(rows, r.Values())
	}

	w := csv.NewWriter(o)
	w.Comma = comma
	w.WriteAll(rows)
	err := w.Error()
	if err != nil {
		return fmt.Errorf("write csv: %v", err)
	}
	return nil
}

// Read loads the records of a file written by Writer.
func Read(p string, comma rune) ([]*stockinfo.Record, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecords(f, comma)
}

func ReadRecords(in io.Reader, comma rune) ([]*stockinfo.Record, error) {
	r := csv.NewReader(in)
	r.Comma = comma
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %v", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read csv: missing header")
	}

	header := rows[0]
	if len(header) != len(stockinfo.RecordHeader) {
		return nil, fmt.Errorf("read csv: invalid header: %v", header)
	}
	for i, h := range stockinfo.RecordHeader {
		if header[i] != h {
			return nil, fmt.Errorf("read csv: invalid header: %v", header)
		}
	}

	records := make([]*stockinfo.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := stockinfo.ParseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("read csv: line %d: %v", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

type options struct {
	path   string
	comma  rune
	logger logger.Logger
}

var defaultOptions = options{
	path:  "stock_data.csv",
	comma: ',',
}

type Option func(o options) options

func Path(v string) Option {
	return func(o options) options {
		o.path = v
		return o
	}
}

func Comma(v rune) Option {
	return func(o options) options {
		o.comma = v
		return o
	}
}

func Log(v logger.Logger) Option {
	return func(o options) options {
		o.logger = v
		return o
	}
}
