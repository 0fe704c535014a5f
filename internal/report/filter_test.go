package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testReports() []Report {
	return []Report{
		{Serial: 1, Title: "First Report Title", YearCode: "y2",
			YearLabel: "2010-2011"},
		{Serial: 2, Title: "Second Report", YearCode: "y1",
			YearLabel: "2009 downwards"},
		{Serial: 3, Title: "Unclassified Report"},
	}
}

func serials(reports []Report) []int {
	s := make([]int, len(reports))
	for i := range reports {
		s[i] = reports[i].Serial
	}
	return s
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		years []string
		query string
		want  []int
	}{
		{
			name: "no filters pass everything",
			want: []int{1, 2, 3},
		},
		{
			name:  "by year code",
			years: []string{"y2"},
			want:  []int{1},
		},
		{
			name:  "by year label",
			years: []string{"2010-2011"},
			want:  []int{1},
		},
		{
			name:  "year tokens are case-insensitive",
			years: []string{"Y1"},
			want:  []int{2},
		},
		{
			name:  "several year tokens keep input order",
			years: []string{"y1", "y2"},
			want:  []int{1, 2},
		},
		{
			name:  "year filter skips reports without year",
			years: []string{"unknown"},
			want:  []int{},
		},
		{
			name:  "by query",
			query: "second",
			want:  []int{2},
		},
		{
			name:  "query matches substring anywhere",
			query: "report",
			want:  []int{1, 2, 3},
		},
		{
			name:  "year and query combine with AND",
			years: []string{"y1", "y2"},
			query: "first",
			want:  []int{1},
		},
		{
			name:  "no match",
			query: "no such title",
			want:  []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(testReports(), tt.years, tt.query)
			assert.Equal(t, tt.want, serials(got))
		})
	}
}
