package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/foresight/pkg/metrics"
)

// maxIssueSamples bounds the malformed field errors kept for reporting.
const maxIssueSamples = 50

// seasonStartMonth is the first month that belongs to the season named by
// its own year.
const seasonStartMonth = time.October

// dateLayouts are tried in order when deriving a season from a game date.
var dateLayouts = []string{ //nolint:gochecknoglobals // parse table
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	"Mon, Jan 2, 2006",
	"20060102",
}

// issues collects malformed field reports from concurrent readers.
type issues struct {
	mu      sync.Mutex
	count   int
	samples []error
}

func (s *issues) add(file string, line int, col, raw string) {
	metrics.RecordMalformedField(col)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	if len(s.samples) < maxIssueSamples {
		s.samples = append(s.samples,
			fmt.Errorf("%s:%d %s=%q: %w", file, line, col, raw, ErrMalformedField))
	}
}

// fieldParser parses the fields of one file, reporting failures to iss.
type fieldParser struct {
	file string
	iss  *issues
}

// optional parses a number that may be missing. Empty yields nil; an
// unparseable or non-finite value yields nil and is reported.
func (p fieldParser) optional(line int, col, raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.iss.add(p.file, line, col, raw)
		return nil
	}
	return &v
}

// number parses a number that defaults to 0.
func (p fieldParser) number(line int, col, raw string) float64 {
	if v := p.optional(line, col, raw); v != nil {
		return *v
	}
	return 0
}

// minutes parses either a decimal or an MM:SS clock. Missing means 0.
func (p fieldParser) minutes(line int, col, raw string) float64 {
	if raw == "" {
		return 0
	}
	if v, ok := parseClock(raw); ok {
		return v
	}
	return p.number(line, col, raw)
}

// parseClock converts MM:SS to fractional minutes. Whole-second clocks are
// computed as seconds/60 so that a value written back as MM:SS round-trips.
func parseClock(raw string) (float64, bool) {
	mm, ss, found := strings.Cut(raw, ":")
	if !found {
		return 0, false
	}
	m, errM := strconv.Atoi(mm)
	s, errS := strconv.Atoi(ss)
	if errM == nil && errS == nil && m >= 0 && s >= 0 {
		return float64(m*60+s) / 60, true
	}

	fm, errM := strconv.ParseFloat(mm, 64)
	fs, errS := strconv.ParseFloat(ss, 64)
	if errM != nil || errS != nil {
		return 0, false
	}
	v := fm + fs/60
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// SeasonFromDate names the season a game date belongs to: October onwards
// is the season of that year, earlier months belong to the previous year.
func SeasonFromDate(raw string) (string, bool) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		year := t.Year()
		if t.Month() < seasonStartMonth {
			year--
		}
		return strconv.Itoa(year), true
	}
	return "", false
}

// normalizeDate renders a parseable date as yyyy-mm-dd, or returns raw.
func normalizeDate(raw string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return raw
}
