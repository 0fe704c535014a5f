package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport_TargetPath(t *testing.T) {
	r := Report{
		Serial:      3,
		Title:       "Report with / invalid : chars",
		DateText:    "March 03, 2021",
		DownloadURL: "/file.pdf",
		YearCode:    "y2",
		YearLabel:   "2010-2011",
	}

	target := r.TargetPath("base")
	assert.Equal(t, "2010-2011", filepath.Base(filepath.Dir(target)))
	assert.True(t, strings.HasPrefix(filepath.Base(target),
		"0003_Report_with_invalid_chars"))
	assert.Equal(t, ".pdf", filepath.Ext(target))
}

func TestReport_TargetPath_withoutYearLabel(t *testing.T) {
	r := Report{Serial: 12, Title: "Some Report"}
	assert.Equal(t, filepath.Join("base", "0012_Some_Report.pdf"),
		r.TargetPath("base"))
}

func TestReport_Filename_padsSerial(t *testing.T) {
	r := Report{Serial: 12345, Title: "Big"}
	assert.Equal(t, "12345_Big.pdf", r.Filename())
}

func TestReport_SubDir(t *testing.T) {
	r := Report{YearLabel: "2009 downwards"}
	assert.Equal(t, "2009_downwards", r.SubDir())

	r.YearLabel = ""
	assert.Empty(t, r.SubDir())
}
