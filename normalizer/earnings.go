package normalizer

import (
	"context"
	"time"

	"szakszon.com/stockinfo"
)

// earningsAttempt resolves the next earnings date from one source. ok is
// false when the source has no usable value.
type earningsAttempt func(
	ctx context.Context,
	symbol string,
	now time.Time,
) (ts stockinfo.Timestamp, ok bool, err error)

func (n *Normalizer) earningsDate(
	ctx context.Context,
	symbol string,
	now time.Time,
) *stockinfo.Timestamp {
	for _, attempt := range n.attempts {
		ts, ok, err := attempt(ctx, symbol, now)
		if err != nil {
			n.logf("Error getting earnings date for %v: %v", symbol, err)
			continue
		}
		if ok {
			return &ts
		}
	}
	return nil
}

func (n *Normalizer) calendarEarningsDate(
	ctx context.Context,
	symbol string,
	now time.Time,
) (stockinfo.Timestamp, bool, error) {
	if n.opts.calendarService == nil {
		return stockinfo.Timestamp{}, false, nil
	}

	out, err := n.opts.calendarService.Fetch(
		ctx,
		&stockinfo.CalendarFetchInput{Symbol: symbol},
	)
	if err != nil {
		return stockinfo.Timestamp{}, false, err
	}
	if out == nil {
		return stockinfo.Timestamp{}, false, nil
	}

	ts, ok := out.Calendar.First(stockinfo.CalendarEarningsDate)
	if !ok || ts.IsZero() {
		return stockinfo.Timestamp{}, false, nil
	}
	return ts, true, nil
}

// upcomingEarningsDate picks the earliest event strictly after now.
func (n *Normalizer) upcomingEarningsDate(
	ctx context.Context,
	symbol string,
	now time.Time,
) (stockinfo.Timestamp, bool, error) {
	if n.opts.earningsDateService == nil {
		return stockinfo.Timestamp{}, false, nil
	}

	out, err := n.opts.earningsDateService.Fetch(
		ctx,
		&stockinfo.EarningsDateFetchInput{Symbol: symbol},
	)
	if err != nil {
		return stockinfo.Timestamp{}, false, err
	}
	if out == nil {
		return stockinfo.Timestamp{}, false, nil
	}

	var next stockinfo.Timestamp
	var nextTime time.Time
	found := false
	for _, ed := range out.EarningsDates {
		if ed == nil || ed.Date.IsZero() {
			continue
		}
		t := ed.Date.In(n.opts.location)
		if !t.After(now) {
			continue
		}
		if !found || t.Before(nextTime) {
			next, nextTime, found = ed.Date, t, true
		}
	}
	return next, found, nil
}
