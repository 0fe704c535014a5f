// Package listing parses the AGP audit reports listing page into report
// records, joining each row's year code against the year filter options
// found in the same document.
package listing

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/agpdl/agpdl/internal/report"
)

const (
	yearOptionSelector = "#year option"
	tableRowSelector   = "#myTable tbody tr"
)

// Column order of the listing table. Columns after the download link are
// hidden in the rendered page but present in the markup.
const (
	colSerial = iota
	colTitle
	colDate
	colLink
	colYearCode
	colReportCode
	colTypeCode
	colStatus
)

// Parse extracts report records from the raw listing markup, in document
// order. Malformed rows are dropped silently: partial listings are common
// and must not abort the whole parse.
func Parse(r io.Reader) ([]report.Report, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing markup: %w", err)
	}

	yearLabels := parseYearLabels(doc)

	var reports []report.Report
	doc.Find(tableRowSelector).Each(func(_ int, tr *goquery.Selection) {
		if rep, ok := parseRow(tr, yearLabels); ok {
			reports = append(reports, rep)
		}
	})
	return reports, nil
}

// parseYearLabels builds the year code to label mapping from the year filter
// dropdown. Options with empty value or text are skipped and the first
// occurrence of a code wins.
func parseYearLabels(doc *goquery.Document) map[string]string {
	labels := make(map[string]string)
	doc.Find(yearOptionSelector).Each(func(_ int, opt *goquery.Selection) {
		value := strings.TrimSpace(opt.AttrOr("value", ""))
		text := strings.TrimSpace(opt.Text())
		if value == "" || text == "" {
			return
		}
		if _, ok := labels[value]; !ok {
			labels[value] = text
		}
	})
	return labels
}

func parseRow(tr *goquery.Selection, yearLabels map[string]string,
) (report.Report, bool) {
	cells := tr.Find("td")
	if cells.Length() < 4 {
		return report.Report{}, false
	}

	serial, err := strconv.Atoi(cellText(cells, colSerial))
	if err != nil {
		return report.Report{}, false
	}

	href := downloadHref(cells.Eq(colLink))
	if href == "" {
		return report.Report{}, false
	}

	yearCode := cellText(cells, colYearCode)
	return report.Report{
		Serial:      serial,
		Title:       joinedText(cells.Eq(colTitle)),
		DateText:    cellText(cells, colDate),
		DownloadURL: href,
		YearCode:    yearCode,
		YearLabel:   yearLabels[yearCode],
		ReportCode:  cellText(cells, colReportCode),
		TypeCode:    cellText(cells, colTypeCode),
		IsActive:    parseStatus(cellText(cells, colStatus)),
	}, true
}

// downloadHref returns the href of the first anchor in the cell, or "" when
// no anchor carries a non-empty href.
func downloadHref(cell *goquery.Selection) string {
	href := ""
	cell.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href = strings.TrimSpace(a.AttrOr("href", ""))
		return href == ""
	})
	return href
}

// parseStatus interprets the status cell as a tri-state boolean: only the
// literal strings "true" and "false" (case-insensitive) are recognized,
// anything else means unknown.
func parseStatus(s string) *bool {
	switch strings.ToLower(s) {
	case "true":
		active := true
		return &active
	case "false":
		active := false
		return &active
	}
	return nil
}

func cellText(cells *goquery.Selection, i int) string {
	return strings.TrimSpace(cells.Eq(i).Text())
}

// joinedText concatenates the trimmed descendant text nodes of the selection
// with single spaces, so markup inside a title cell does not glue or pad
// words.
func joinedText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
