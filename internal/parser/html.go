// Package parser extracts normalized tables and snapshot metadata from AWR
// and ASH HTML reports (spec.md §4.1). It walks the DOM with
// golang.org/x/net/html rather than hand-rolled regex scraping, mirroring
// the keyword-driven "find table after heading" convention of the report
// this was ported from.
package parser

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
	"github.com/dbaworks/awr-advisor/internal/pipeline"
)

var headingTags = map[string]bool{"p": true, "h1": true, "h2": true, "h3": true}

// findTableAfterHeading walks the document for the first heading-ish tag
// (p/h1/h2/h3) whose text contains any of keywords, then returns the next
// <table> element encountered in document order after it.
func findTableAfterHeading(doc *html.Node, keywords []string) *html.Node {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}

	var found *html.Node
	var walk func(*html.Node) bool
	var afterHeading bool

	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if afterHeading && n.Data == "table" {
				found = n
				return true
			}
			if headingTags[n.Data] {
				text := strings.ToLower(strings.TrimSpace(textContent(n)))
				for _, k := range lowered {
					if strings.Contains(text, k) {
						afterHeading = true
						break
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return found
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// allRows collects every <tr> under n in document order, descending through
// any implicit <tbody>/<thead> the HTML5 parser inserts.
func allRows(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// parseGenericTable reads a <table>'s first row as the header and every
// subsequent row as a data row, skipping rows with no td/th cells.
func parseGenericTable(table *html.Node) *awrmodel.Table {
	var headers []string
	var rows [][]string

	for i, tr := range allRows(table) {
		cells := rowCells(tr)
		if len(cells) == 0 {
			continue
		}
		if i == 0 {
			headers = cells
		} else {
			rows = append(rows, cells)
		}
	}

	if len(headers) == 0 || len(rows) == 0 {
		return nil
	}
	return &awrmodel.Table{Columns: normalizeColumns(headers), Rows: rows}
}

func rowCells(tr *html.Node) []string {
	if tr.Type != html.ElementNode || tr.Data != "tr" {
		return nil
	}
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, strings.TrimSpace(textContent(c)))
		}
	}
	return cells
}

// normalizeColumns applies the lower/strip/space-to-underscore/pct rule
// shared by every extracted table (spec.md §4.1 "column-normalization rule").
func normalizeColumns(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		c := strings.ToLower(strings.TrimSpace(h))
		c = strings.ReplaceAll(c, " ", "_")
		c = strings.ReplaceAll(c, "/", "_")
		c = strings.ReplaceAll(c, "%", "pct")
		c = strings.ReplaceAll(c, "(", "")
		c = strings.ReplaceAll(c, ")", "")
		out[i] = c
	}
	return out
}

// sqlStatsKeywords, waitEventKeywords, instanceStatsKeywords mirror the
// heading-match tables used to locate each AWR section.
var (
	sqlStatsKeywords = []string{
		"sql ordered by elapsed time", "sql ordered by cpu time", "sql statistics",
	}
	waitEventKeywords = []string{
		"top timed events", "foreground wait events", "wait events",
		"top foreground events", "top 10 foreground events",
	}
	instanceStatsKeywords = []string{
		"instance activity stats", "instance activity statistics", "instance activity",
	}
	loadProfileKeywords  = []string{"load profile"}
	ashActivityKeywords  = []string{"activity over time", "active sessions over time"}
	ashEventsKeywords    = []string{"top events", "ash events"}
	ashFeaturesKeywords  = []string{"ash features", "features"}
)

// requiredAWRTables is the failure rule: an AWR bundle missing any of these
// three tables is rejected outright (spec.md §4.1 "required-table failure
// rule").
var requiredAWRTables = []awrmodel.TableName{
	awrmodel.TableSQLStats, awrmodel.TableInstanceStats, awrmodel.TableWaitEvents,
}

// ParseAWR extracts every recognized table from one AWR HTML document. It
// returns pipeline.Error with Kind=KindMissingTable if any required table
// is absent.
func ParseAWR(htmlBytes []byte, sourceFile string) ([]*awrmodel.Table, error) {
	doc, err := html.Parse(strings.NewReader(string(htmlBytes)))
	if err != nil {
		return nil, pipeline.Newf(pipeline.KindParseError, "parser", "parse %s: %w", sourceFile, err)
	}

	var tables []*awrmodel.Table
	add := func(name awrmodel.TableName, t *awrmodel.Table) {
		if t == nil {
			return
		}
		t.Name = name
		t.Prefix = sourceFile
		tables = append(tables, t)
	}

	add(awrmodel.TableSQLStats, parseGenericTable(findTableAfterHeading(doc, sqlStatsKeywords)))
	add(awrmodel.TableWaitEvents, parseGenericTable(findTableAfterHeading(doc, waitEventKeywords)))
	add(awrmodel.TableInstanceStats, parseGenericTable(findTableAfterHeading(doc, instanceStatsKeywords)))
	add(awrmodel.TableLoadProfile, parseLoadProfile(doc))

	present := make(map[awrmodel.TableName]bool, len(tables))
	for _, t := range tables {
		present[t.Name] = true
	}
	var missing []string
	for _, req := range requiredAWRTables {
		if !present[req] {
			missing = append(missing, string(req))
		}
	}
	if len(missing) > 0 {
		return tables, pipeline.Newf(pipeline.KindMissingTable, "parser",
			"AWR parsing incomplete for %s: missing required tables %v", sourceFile, missing)
	}
	return tables, nil
}

// parseLoadProfile handles the Load Profile table's fixed 3-column shape
// (metric, per_second, per_transaction) directly, since its rows never
// carry their own header row in the source HTML.
func parseLoadProfile(doc *html.Node) *awrmodel.Table {
	table := findTableAfterHeading(doc, loadProfileKeywords)
	if table == nil {
		return nil
	}
	var rows [][]string
	for _, tr := range allRows(table) {
		cells := rowCells(tr)
		if len(cells) == 3 {
			rows = append(rows, cells)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return &awrmodel.Table{Columns: []string{"metric", "per_second", "per_transaction"}, Rows: rows}
}

// ParseASH extracts the three ASH-specific tables from an Active Session
// History HTML document.
func ParseASH(htmlBytes []byte, sourceFile string) ([]*awrmodel.Table, error) {
	doc, err := html.Parse(strings.NewReader(string(htmlBytes)))
	if err != nil {
		return nil, pipeline.Newf(pipeline.KindParseError, "parser", "parse %s: %w", sourceFile, err)
	}

	var tables []*awrmodel.Table
	add := func(name awrmodel.TableName, t *awrmodel.Table) {
		if t == nil {
			return
		}
		t.Name = name
		t.Prefix = sourceFile
		tables = append(tables, t)
	}
	add(awrmodel.TableASHActivity, parseGenericTable(findTableAfterHeading(doc, ashActivityKeywords)))
	add(awrmodel.TableASHEvents, parseGenericTable(findTableAfterHeading(doc, ashEventsKeywords)))
	add(awrmodel.TableASHFeatures, parseGenericTable(findTableAfterHeading(doc, ashFeaturesKeywords)))
	return tables, nil
}
