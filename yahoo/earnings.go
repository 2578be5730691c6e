package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/guregu/null/v6"
	"golang.org/x/net/html"
	"szakszon.com/stockinfo"
)

func (c *Yahoo) NewEarningsDateService() stockinfo.EarningsDateService {
	return &earningsDateService{
		Yahoo: c,
	}
}

type earningsDateService struct {
	*Yahoo
}

func (s *earningsDateService) Fetch(
	ctx context.Context,
	in *stockinfo.EarningsDateFetchInput,
) (*stockinfo.EarningsDateFetchOutput, error) {
	body, err := s.pages.Page(ctx, s.earningsURL(in.Symbol))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	dates, err := parseEarningsTable(body, s.logf)
	if err != nil {
		return nil, fmt.Errorf("parse earnings dates: %v", err)
	}
	return &stockinfo.EarningsDateFetchOutput{
		EarningsDates: dates,
	}, nil
}

// parseEarningsTable reads the earnings calendar table. A page without a
// table has no earnings events. Rows with an unreadable date are skipped.
func parseEarningsTable(
	r io.Reader,
	logf func(format string, v ...interface{}),
) ([]*stockinfo.EarningsDate, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, err
	}

	dates := make([]*stockinfo.EarningsDate, 0)
	table := htmlquery.FindOne(doc, "//table")
	if table == nil {
		return dates, nil
	}

	dateCol, estimateCol, reportedCol := -1, -1, -1
	for i, th := range htmlquery.Find(table, ".//thead//th") {
		switch cellText(th) {
		case "Earnings Date":
			dateCol = i
		case "EPS Estimate":
			estimateCol = i
		case "Reported EPS":
			reportedCol = i
		}
	}
	if dateCol == -1 {
		return nil, fmt.Errorf("column not found: Earnings Date")
	}

	for _, tr := range htmlquery.Find(table, ".//tbody/tr") {
		cells := htmlquery.Find(tr, "./td")
		if dateCol >= len(cells) {
			continue
		}
		ts, err := parseEarningsDate(cellText(cells[dateCol]))
		if err != nil {
			logf("Skipping earnings row: %v", err)
			continue
		}
		ed := &stockinfo.EarningsDate{Date: ts}
		if estimateCol >= 0 && estimateCol < len(cells) {
			ed.EPSEstimate = parseEPS(cellText(cells[estimateCol]))
		}
		if reportedCol >= 0 && reportedCol < len(cells) {
			ed.ReportedEPS = parseEPS(cellText(cells[reportedCol]))
		}
		dates = append(dates, ed)
	}
	return dates, nil
}

func cellText(n *html.Node) string {
	return strings.Join(strings.Fields(htmlquery.InnerText(n)), " ")
}

func parseEPS(s string) null.Float {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// e.g. "Oct 30, 2025, 4 PM EDT", "Jan 30, 2025, 4 PMEST", "Apr 30, 2025"
var earningsDateRE = regexp.MustCompile(
	`^([A-Z][a-z]{2} \d{1,2}, \d{4})` +
		`(?:,? (\d{1,2})(?::(\d{2}))? ?([AP]M) ?([A-Z]{2,4})?)?$`,
)

var zoneAbbrevs = map[string]string{
	"ET":  "America/New_York",
	"EST": "America/New_York",
	"EDT": "America/New_York",
	"CT":  "America/Chicago",
	"CST": "America/Chicago",
	"CDT": "America/Chicago",
	"MT":  "America/Denver",
	"MST": "America/Denver",
	"MDT": "America/Denver",
	"PT":  "America/Los_Angeles",
	"PST": "America/Los_Angeles",
	"PDT": "America/Los_Angeles",
	"GMT": "UTC",
	"UTC": "UTC",
	"BST": "Europe/London",
}

// parseEarningsDate returns a zoned timestamp when the text names a known
// zone and a naive one otherwise.
func parseEarningsDate(s string) (stockinfo.Timestamp, error) {
	m := earningsDateRE.FindStringSubmatch(s)
	if m == nil {
		return stockinfo.Timestamp{}, fmt.Errorf("invalid earnings date: %q", s)
	}

	day, err := time.Parse("Jan 2, 2006", m[1])
	if err != nil {
		return stockinfo.Timestamp{}, fmt.Errorf("invalid earnings date: %q", s)
	}

	hour, minute := 0, 0
	if m[2] != "" {
		hour, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			minute, _ = strconv.Atoi(m[3])
		}
		hour = hour % 12
		if m[4] == "PM" {
			hour += 12
		}
	}

	if name, ok := zoneAbbrevs[m[5]]; ok {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return stockinfo.Timestamp{}, err
		}
		t := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
		return stockinfo.Zoned(t), nil
	}

	t := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
	return stockinfo.Naive(t), nil
}

type pageFetcher interface {
	Page(ctx context.Context, u string) (io.ReadCloser, error)
}

type httpPages struct {
	c *Yahoo
}

func (p *httpPages) Page(
	ctx context.Context,
	u string,
) (io.ReadCloser, error) {
	resp, err := p.c.httpGet(ctx, u)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || 299 < resp.StatusCode {
		defer resp.Body.Close()
		return nil, &APIError{
			StatusCode:  resp.StatusCode,
			Endpoint:    "calendar/earnings",
			Description: http.StatusText(resp.StatusCode),
		}
	}
	return resp.Body, nil
}
