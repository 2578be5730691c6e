package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"szakszon.com/stockinfo"
	"szakszon.com/stockinfo/batch"
	"szakszon.com/stockinfo/csvfile"
	"szakszon.com/stockinfo/logger"
	"szakszon.com/stockinfo/sqlstore"
)

type Command struct {
	name string
	opts options
	args []string
}

func NewCommand(
	name string,
	args []string,
	os ...Option,
) *Command {
	opts := defaultOptions
	for _, o := range os {
		opts = o(opts)
	}

	return &Command{
		name: name,
		opts: opts,
		args: args,
	}
}

func (c *Command) Execute(ctx context.Context) error {
	switch c.name {
	case "pull":
		return c.pull(ctx)
	case "show":
		return c.show(ctx)
	case "symbols":
		return c.symbols(ctx)
	default:
		return fmt.Errorf("invalid command: %v", c.name)
	}
}

func (c *Command) pull(ctx context.Context) error {
	symbols := c.resolveSymbols(c.args)
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols")
	}

	d := batch.NewDriver(
		batch.WithNormalizer(c.opts.normalizer),
		batch.Writers(c.opts.writers...),
		batch.Delay(c.opts.delay),
		batch.RunID(c.opts.runID),
		batch.Log(c.opts.logger),
	)
	res := d.Run(ctx, symbols)

	if len(res.Records) > 0 {
		c.writeRecords(res.Records)
	}
	c.writePullFooter(symbols, res)
	return nil
}

func (c *Command) show(ctx context.Context) error {
	if c.opts.source == nil {
		return fmt.Errorf("no record source")
	}

	records, err := c.opts.source.Records(ctx, c.resolveArgs(c.args))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		c.writef("No records\n")
		return nil
	}
	c.writeRecords(records)
	return nil
}

func (c *Command) symbols(ctx context.Context) error {
	for _, s := range c.resolveSymbols(c.args) {
		c.writef("%v\n", s)
	}
	return nil
}

// resolveSymbols returns the symbols given as arguments, or the configured
// ones when there are none.
func (c *Command) resolveSymbols(args []string) []string {
	symbols := c.resolveArgs(args)
	if len(symbols) > 0 {
		return symbols
	}
	return c.resolveArgs(c.opts.symbols)
}

func (c *Command) resolveArgs(args []string) []string {
	seen := make(map[string]bool, len(args))
	symbols := make([]string, 0, len(args))
	for _, a := range args {
		s := strings.ToUpper(strings.TrimSpace(a))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	return symbols
}

func (c *Command) writeRecords(records []*stockinfo.Record) {
	out := &bytes.Buffer{}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	b := &bytes.Buffer{}
	for _, h := range stockinfo.RecordHeader {
		b.WriteString(h)
		b.WriteByte('\t')
	}
	fmt.Fprintln(w, b.String())

	for _, r := range records {
		b.Reset()
		for _, v := range r.Values() {
			b.WriteString(v)
			b.WriteByte('\t')
		}
		fmt.Fprintln(w, b.String())
	}
	w.Flush()

	c.writef("%s", out.String())
}

func (c *Command) writePullFooter(symbols []string, res *batch.Result) {
	p := message.NewPrinter(language.English)

	dividends := 0
	for _, r := range res.Records {
		if r.DividendOffered == stockinfo.Yes {
			dividends++
		}
	}

	out := &bytes.Buffer{}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Run:\t%v\n", res.RunID)
	fmt.Fprintln(w, p.Sprintf("Records:\t%d/%d", len(res.Records), len(symbols)))
	fmt.Fprintln(w, p.Sprintf("Paying dividends:\t%d", dividends))
	fmt.Fprintln(w, p.Sprintf("Errors:\t%d", len(res.Errs)))
	fmt.Fprintf(w, "Elapsed:\t%v\n", res.Elapsed.Round(time.Millisecond))
	w.Flush()

	c.writef("\n%s", out.String())
}

func (c *Command) writef(format string, v ...interface{}) {
	if c.opts.writer != nil {
		fmt.Fprintf(c.opts.writer, format, v...)
	}
}

// RecordSource serves previously saved records.
type RecordSource interface {
	Records(ctx context.Context, symbols []string) ([]*stockinfo.Record, error)
}

func SQLSource(db *sqlstore.DB) RecordSource {
	return &sqlSource{db: db}
}

type sqlSource struct {
	db *sqlstore.DB
}

func (s *sqlSource) Records(
	ctx context.Context,
	symbols []string,
) ([]*stockinfo.Record, error) {
	return s.db.Records(ctx, &sqlstore.RecordFilter{Symbols: symbols})
}

func CSVSource(path string, comma rune) RecordSource {
	return &csvSource{path: path, comma: comma}
}

type csvSource struct {
	path  string
	comma rune
}

func (s *csvSource) Records(
	ctx context.Context,
	symbols []string,
) ([]*stockinfo.Record, error) {
	records, err := csvfile.Read(s.path, s.comma)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return records, nil
	}

	want := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		want[sym] = true
	}
	filtered := make([]*stockinfo.Record, 0, len(symbols))
	for _, r := range records {
		if want[r.Symbol] {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

type options struct {
	writer     io.Writer
	symbols    []string
	normalizer batch.Normalizer
	writers    []stockinfo.RecordWriter
	source     RecordSource
	delay      time.Duration
	runID      string
	logger     logger.Logger
}

var defaultOptions = options{
	delay: time.Second,
}

type Option func(o options) options

func Writer(v io.Writer) Option {
	return func(o options) options {
		o.writer = v
		return o
	}
}

func Symbols(v []string) Option {
	return func(o options) options {
		o.symbols = v
		return o
	}
}

func Normalizer(v batch.Normalizer) Option {
	return func(o options) options {
		o.normalizer = v
		return o
	}
}

func RecordWriters(v ...stockinfo.RecordWriter) Option {
	return func(o options) options {
		o.writers = append(o.writers, v...)
		return o
	}
}

func Source(v RecordSource) Option {
	return func(o options) options {
		o.source = v
		return o
	}
}

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
