package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"szakszon.com/stockinfo"
	"szakszon.com/stockinfo/cli"
	"szakszon.com/stockinfo/config"
	"szakszon.com/stockinfo/csvfile"
	"szakszon.com/stockinfo/logger"
	"szakszon.com/stockinfo/normalizer"
	"szakszon.com/stockinfo/sqlstore"
	"szakszon.com/stockinfo/yahoo"
)

const usage = `Usage: stockinfo [<command>] [<flags>] [<symbol>...]

Commands:
  pull     fetch the symbols and save them (default)
  show     print saved records
  symbols  print the configured symbols

Flags:`

func main() {
	var err error
	ctx := context.Background()
	ctx, ctxCancel := context.WithCancel(ctx)

	stdoutSync := &StdoutSync{
		mu: &sync.Mutex{},
		w:  os.Stdout,
	}

	termCh := make(chan os.Signal, 1)
	signal.Notify(termCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-termCh
		fmt.Println("Ctrl+C pressed")
		ctxCancel()
	}()

	name, flagArgs := "pull", os.Args[1:]
	if len(flagArgs) > 0 && !strings.HasPrefix(flagArgs[0], "-") {
		name, flagArgs = flagArgs[0], flagArgs[1:]
	}

	optsFlagSet := flag.NewFlagSet(
		"options",
		flag.ExitOnError,
	)
	optsFlagSet.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		optsFlagSet.PrintDefaults()
	}
	configFlag := optsFlagSet.String(
		"config",
		"",
		"An optional TOML configuration file.",
	)
	envFileFlag := optsFlagSet.String(
		"env-file",
		".env",
		"An optional file of STOCKINFO_* variables.",
	)
	outputFlag := optsFlagSet.String(
		"output",
		"",
		"CSV output file. Default stock_data.csv.",
	)
	databaseFlag := optsFlagSet.String(
		"database",
		"",
		"Database connection string, a postgres:// URL "+
			"or a SQLite file. Records are only saved "+
			"to the CSV file when empty.",
	)
	delayFlag := optsFlagSet.String(
		"delay",
		"",
		"Pause between symbols, e.g. 1s.",
	)
	browserFlag := optsFlagSet.Bool(
		"browser",
		false,
		"Render Yahoo pages with headless Chrome.",
	)
	logLevelFlag := optsFlagSet.String(
		"log-level",
		"",
		"Log level: debug, info, warn or error.",
	)
	optsFlagSet.Parse(flagArgs)

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	err = cfg.ApplyEnv(*envFileFlag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	optsFlagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.Output = *outputFlag
		case "database":
			cfg.Database = *databaseFlag
		case "delay":
			cfg.Delay = *delayFlag
		case "browser":
			cfg.Yahoo.Browser = *browserFlag
		case "log-level":
			cfg.Logging.Level = *logLevelFlag
		}
	})
	err = cfg.Validate()
	if err != nil {
		fmt.Println("invalid configuration:", err)
		os.Exit(1)
	}

	// Validate has checked these.
	delay, _ := cfg.DelayDuration()
	timeout, _ := cfg.Yahoo.TimeoutDuration()
	comma, _ := cfg.CommaRune()
	loc, _ := cfg.Normalizer.Location()

	log, err := logger.NewConsole(stdoutSync, cfg.Logging.Level)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Yahoo.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Yahoo.RequestsPerSecond), 1)
	}

	yc, err := yahoo.NewYahoo(
		yahoo.BaseURL(cfg.Yahoo.BaseURL),
		yahoo.PageURL(cfg.Yahoo.PageURL),
		yahoo.CookieURL(cfg.Yahoo.CookieURL),
		yahoo.Timeout(timeout),
		yahoo.RateLimiter(limiter),
		yahoo.DividendRange(cfg.Yahoo.DividendRange),
		yahoo.Browser(cfg.Yahoo.Browser),
		yahoo.Log(log),
	)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	norm := normalizer.NewNormalizer(
		normalizer.ProfileService(yc.NewProfileService()),
		normalizer.CalendarService(yc.NewCalendarService()),
		normalizer.EarningsDateService(yc.NewEarningsDateService()),
		normalizer.DividendService(yc.NewDividendService()),
		normalizer.Location(loc),
		normalizer.MaxFutureDays(cfg.Normalizer.MaxFutureDays),
		normalizer.UnknownDividendStatus(cfg.Normalizer.UnknownDividendStatus),
		normalizer.Log(log),
	)

	runID := uuid.NewString()
	writers := []stockinfo.RecordWriter{
		csvfile.NewWriter(
			csvfile.Path(cfg.Output),
			csvfile.Comma(comma),
			csvfile.Log(log),
		),
	}
	source := cli.CSVSource(cfg.Output, comma)

	var db *sqlstore.DB
	if cfg.Database != "" {
		db, err = openDB(ctx, cfg.Database, runID)
		if err != nil {
			log.Logf("Error opening database: %v", err)
		} else {
			writers = append(writers, db)
			source = cli.SQLSource(db)
		}
	}

	cmd := cli.NewCommand(
		name,
		optsFlagSet.Args(),
		cli.Writer(stdoutSync),
		cli.Symbols(cfg.Symbols),
		cli.Normalizer(norm),
		cli.RecordWriters(writers...),
		cli.Source(source),
		cli.Delay(delay),
		cli.RunID(runID),
		cli.Log(log),
	)
	err = execute(ctx, cmd, db)
	if err != nil {
		fmt.Println(err)
		ctxCancel()
		os.Exit(1)
	}
	ctxCancel()
}

// execute runs cmd and closes db afterwards, also when cmd fails.
func execute(ctx context.Context, cmd *cli.Command, db *sqlstore.DB) error {
	err := cmd.Execute(ctx)
	if db != nil {
		cerr := db.Close()
		if err == nil && cerr != nil {
			err = fmt.Errorf("close database: %v", cerr)
		}
	}
	return err
}

func openDB(
	ctx context.Context,
	dsn string,
	runID string,
) (*sqlstore.DB, error) {
	db, err := sqlstore.Open(dsn, sqlstore.RunID(runID))
	if err != nil {
		return nil, err
	}
	err = db.InitSchema(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %v", err)
	}
	return db, nil
}

// StdoutSync serializes writes of the logger and the command output.
type StdoutSync struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *StdoutSync) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
