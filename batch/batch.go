// Package batch runs the normalizer over a list of symbols and hands the
// collected records to the configured writers.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"szakszon.com/stockinfo"
	"szakszon.com/stockinfo/logger"
)

type Normalizer interface {
	Normalize(ctx context.Context, symbol string) *stockinfo.Record
}

type Driver struct {
	opts    options
	limiter *rate.Limiter
}

func NewDriver(os ...Option) *Driver {
	opts := defaultOptions
	for _, o := range os {
		opts = o(opts)
	}
	if opts.runID == "" {
		opts.runID = uuid.NewString()
	}

	limit := rate.Inf
	if opts.delay > 0 {
		limit = rate.Every(opts.delay)
	}

	return &Driver{
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (d *Driver) RunID() string {
	return d.opts.runID
}

type Result struct {
	RunID   string
	Records []*stockinfo.Record
	Errs    []error
	Elapsed time.Duration
}

// Run processes symbols in order. A failing symbol is skipped, a failing
// writer is reported in the result. Neither stops the batch.
func (d *Driver) Run(ctx context.Context, symbols []string) *Result {
	start := time.Now()
	res := &Result{
		RunID:   d.opts.runID,
		Records: make([]*stockinfo.Record, 0, len(symbols)),
	}

LOOP:
	for i, symbol := range symbols {
		select {
		case <-ctx.Done():
			res.Errs = append(res.Errs, ctx.Err())
			break LOOP
		default:
		}

		err := d.limiter.Wait(ctx)
		if err != nil {
			res.Errs = append(res.Errs, err)
			break LOOP
		}

		rec, err := d.normalize(ctx, symbol)
		if err != nil {
			d.logf("Failed to process %v: %v", symbol, err)
			res.Errs = append(res.Errs, &SymbolError{Symbol: symbol, Err: err})
			continue
		}
		res.Records = append(res.Records, rec)
		d.logf("Processed %v (%d/%d)", symbol, i+1, len(symbols))
	}

	if len(res.Records) == 0 {
		d.logf("No data was collected")
		res.Elapsed = time.Since(start)
		return res
	}

	// Records gathered before a cancel are still saved.
	writeCtx := context.WithoutCancel(ctx)
	for _, w := range d.opts.writers {
		err := w.Write(writeCtx, res.Records)
		if err != nil {
			d.logf("Error saving data: %v", err)
			res.Errs = append(res.Errs, &WriteError{Err: err})
		}
	}

	res.Elapsed = time.Since(start)
	return res
}

func (d *Driver) normalize(
	ctx context.Context,
	symbol string,
) (rec *stockinfo.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	if d.opts.normalizer == nil {
		return nil, errors.New("no normalizer")
	}
	rec = d.opts.normalizer.Normalize(ctx, symbol)
	if rec == nil {
		return nil, errors.New("no record")
	}
	return rec, nil
}

func (d *Driver) logf(format string, v ...interface{}) {
	if d.opts.logger != nil {
		d.opts.logger.Logf(format, v...)
	}
}

type SymbolError struct {
	Symbol string
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%v: %v", e.Symbol, e.Err)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}

type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

type options struct {
	normalizer Normalizer
	writers    []stockinfo.RecordWriter
	delay      time.Duration
	runID      string
	logger     logger.Logger
}

var defaultOptions = options{
	delay: time.Second,
}

type Option func(o options) options

func WithNormalizer(v Normalizer) Option {
	return func(o options) options {
		o.normalizer = v
		return o
	}
}

func Writers(v ...stockinfo.RecordWriter) Option {
	return func(o options) options {
		o.writers = append(o.writers, v...)
		return o
	}
}

// Delay spaces consecutive symbols. Zero disables it.
func Delay(v time.Duration) Option {
	return func(o options) options {
		o.delay = v
		return o
	}
}

func RunID(v string) Option {
	return func(o options) options {
		o.runID = v
		return o
	}
}

func Log(v logger.Logger) Option {
	return func(o options) options {
		o.logger = v
		return o
	}
}
