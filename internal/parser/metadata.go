package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

// This parser returns raw metadata only: begin/end snapshot time, elapsed
// seconds, DB CPU seconds, CPU core count, instance CPU busy percentage and
// host CPU idle percentage. Rounding and display formatting belong to the
// time window detector, not here.

var (
	englishTimestamp = regexp.MustCompile(`(\d{2})-(\w{3})-(\d{2})\s+(\d{2}):(\d{2}):(\d{2})`)
	// Chinese-locale AWR rendering of the same DD-Mon-YY shape, with the
	// English month abbreviation replaced by a bare numeral plus the 月
	// ("month") character, e.g. "09-8月 -20 21:00:54".
	chineseTimestamp = regexp.MustCompile(`(\d{1,2})-(\d{1,2})月\s*-(\d{2})\s+(\d{2}):(\d{2}):(\d{2})`)
	bareTimestamp    = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})$`)
	snapTimeCell     = regexp.MustCompile(`(?i)(begin|end)\s+snap`)
	monthAbbrev      = map[string]time.Month{
		"Jan": time.January, "Feb": time.February, "Mar": time.March, "Apr": time.April,
		"May": time.May, "Jun": time.June, "Jul": time.July, "Aug": time.August,
		"Sep": time.September, "Oct": time.October, "Nov": time.November, "Dec": time.December,
	}
)

// ParseSnapshotMetadata extracts the AWR header metadata directly from the
// raw HTML, independent of any already-extracted table (spec.md §4.1).
func ParseSnapshotMetadata(htmlBytes []byte) *awrmodel.SnapshotMetadata {
	doc, err := html.Parse(strings.NewReader(string(htmlBytes)))
	meta := &awrmodel.SnapshotMetadata{ParseSuccess: true}
	if err != nil {
		meta.ParseSuccess = false
		meta.ParseErrors = append(meta.ParseErrors, err.Error())
		return meta
	}

	text := textContent(doc)

	if begin, end, ok := extractSnapshotTimes(doc, text); ok {
		meta.BeginTime, meta.EndTime = begin, end
		meta.HasBeginTime, meta.HasEndTime = true, true
	} else {
		meta.ParseErrors = append(meta.ParseErrors, "could not locate begin/end snapshot timestamps")
	}

	if elapsed, ok := extractElapsedSeconds(text); ok {
		meta.ElapsedSeconds, meta.HasElapsedSeconds = elapsed, true
	}
	if cpu, ok := extractDBCPUSeconds(text); ok {
		meta.DBCPUSeconds, meta.HasDBCPUSeconds = cpu, true
	}
	if cores, ok := extractCPUCores(text); ok {
		meta.CPUCores, meta.HasCPUCores = cores, true
	} else {
		meta.CPUCores = 8 // default per the data model's documented fallback
	}
	if busy, ok := extractPctAfterLabel(doc, "Instance CPU", "%Busy CPU"); ok {
		meta.InstanceCPUBusyPct, meta.HasInstanceCPUBusy = busy, true
	}
	if idle, ok := extractPctAfterLabel(doc, "Host CPU", "%Idle"); ok {
		meta.HostCPUIdlePct, meta.HasHostCPUIdle = idle, true
	}

	if !meta.HasBeginTime || !meta.HasEndTime {
		meta.ParseSuccess = false
	}
	return meta
}

// extractSnapshotTimes tries, in order: table cells labeled begin/end snap,
// a regex scan of the raw text, then an ASH "From ... To ..." pattern.
func extractSnapshotTimes(doc *html.Node, text string) (begin, end time.Time, ok bool) {
	if b, e, found := extractFromSnapCells(doc); found {
		return b, e, true
	}
	matches := englishTimestamp.FindAllString(text, -1)
	if len(matches) >= 2 {
		b, errB := parseOracleTimestamp(matches[0])
		e, errE := parseOracleTimestamp(matches[1])
		if errB == nil && errE == nil {
			return b, e, true
		}
	}
	if cnMatches := chineseTimestamp.FindAllString(text, -1); len(cnMatches) >= 2 {
		b, errB := parseOracleTimestamp(cnMatches[0])
		e, errE := parseOracleTimestamp(cnMatches[1])
		if errB == nil && errE == nil {
			return b, e, true
		}
	}
	if idx := strings.Index(text, "From"); idx >= 0 {
		if toIdx := strings.Index(text[idx:], "To"); toIdx >= 0 {
			segment := text[idx : idx+toIdx+40]
			found := englishTimestamp.FindAllString(segment, 2)
			if len(found) == 2 {
				b, errB := parseOracleTimestamp(found[0])
				e, errE := parseOracleTimestamp(found[1])
				if errB == nil && errE == nil {
					return b, e, true
				}
			}
		}
	}
	return time.Time{}, time.Time{}, false
}

func extractFromSnapCells(doc *html.Node) (time.Time, time.Time, bool) {
	var begin, end time.Time
	var haveBegin, haveEnd bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
			label := strings.ToLower(strings.TrimSpace(textContent(n)))
			if snapTimeCell.MatchString(label) {
				if sibling := n.NextSibling; sibling != nil {
					raw := strings.TrimSpace(textContent(sibling))
					if ts, err := parseOracleTimestamp(raw); err == nil {
						if strings.Contains(label, "begin") {
							begin, haveBegin = ts, true
						} else {
							end, haveEnd = ts, true
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return begin, end, haveBegin && haveEnd
}

// parseOracleTimestamp accepts the English "DD-Mon-YY HH:MM:SS" form, the
// Chinese-locale "DD-M月 -YY HH:MM:SS" form (same day-month-year ordering,
// a numeral-plus-月 month token in place of the English abbreviation), and
// the bare "HH:MM:SS" form, defaulting the date portion to today when only
// a time is present.
func parseOracleTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if m := englishTimestamp.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthAbbrev[m[2]]
		if !ok {
			return time.Time{}, errInvalidTimestamp(raw)
		}
		year, _ := strconv.Atoi(m[3])
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		second, _ := strconv.Atoi(m[6])
		return time.Date(year, month, day, hour, minute, second, 0, time.Local), nil
	}
	if m := chineseTimestamp.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		second, _ := strconv.Atoi(m[6])
		return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local), nil
	}
	if m := bareTimestamp.FindStringSubmatch(raw); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		second, _ := strconv.Atoi(m[3])
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, second, 0, time.Local), nil
	}
	return time.Time{}, errInvalidTimestamp(raw)
}

type timestampError string

func (e timestampError) Error() string { return "unrecognized timestamp format: " + string(e) }
func errInvalidTimestamp(raw string) error { return timestampError(raw) }

var elapsedPattern = regexp.MustCompile(`(?i)elapsed[^0-9]{0,20}([\d.]+)\s*\(?mins?\)?`)
var dbCPUPattern = regexp.MustCompile(`(?i)db\s*cpu\(s\)?[^0-9]{0,20}([\d.]+)`)
var coresPattern = regexp.MustCompile(`(?i)cpus?\s*:?\s*(\d+)`)

func extractElapsedSeconds(text string) (float64, bool) {
	if m := elapsedPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v * 60, true
		}
	}
	return 0, false
}

func extractDBCPUSeconds(text string) (float64, bool) {
	if m := dbCPUPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func extractCPUCores(text string) (int, bool) {
	if m := coresPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// extractPctAfterLabel finds a NavigableString containing sectionLabel,
// then searches the next table for a column titled pctColumn.
func extractPctAfterLabel(doc *html.Node, sectionLabel, pctColumn string) (float64, bool) {
	var target *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if target != nil {
			return
		}
		if n.Type == html.TextNode && strings.Contains(n.Data, sectionLabel) {
			target = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if target == nil {
		return 0, false
	}

	table := findNextTable(target)
	if table == nil {
		return 0, false
	}
	rows := allRows(table)
	if len(rows) < 2 {
		return 0, false
	}
	header := rowCells(rows[0])
	colIdx := -1
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), strings.ToLower(pctColumn)) {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return 0, false
	}
	cells := rowCells(rows[1])
	if colIdx >= len(cells) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cells[colIdx]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// findNextTable returns the <table> enclosing n, if any, otherwise the next
// <table> encountered after n in document order.
func findNextTable(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "table" {
			return p
		}
	}
	for cur := nextInOrder(n); cur != nil; cur = nextInOrder(cur) {
		if cur.Type == html.ElementNode && cur.Data == "table" {
			return cur
		}
	}
	return nil
}

func nextInOrder(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.NextSibling != nil {
			return cur.NextSibling
		}
	}
	return nil
}
