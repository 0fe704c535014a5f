package report

import "strings"

// Filter selects reports by year tokens and title substring, preserving the
// input order. A report passes the year filter if its code or label matches
// any requested token case-insensitively; it passes the query filter if the
// query occurs in its title case-insensitively. Both filters combine with
// logical AND; an absent filter passes everything.
func Filter(reports []Report, years []string, query string) []Report {
	wantYears := make(map[string]struct{}, len(years))
	for _, y := range years {
		wantYears[strings.ToLower(y)] = struct{}{}
	}
	query = strings.ToLower(query)

	filtered := make([]Report, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		if len(wantYears) > 0 && !matchesYear(r, wantYears) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(r.Title), query) {
			continue
		}
		filtered = append(filtered, *r)
	}
	return filtered
}

func matchesYear(r *Report, want map[string]struct{}) bool {
	for _, v := range []string{r.YearCode, r.YearLabel} {
		if v == "" {
			continue
		}
		if _, ok := want[strings.ToLower(v)]; ok {
			return true
		}
	}
	return false
}
