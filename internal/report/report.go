// Package report defines the audit report record extracted from the AGP
// listing page and the pure helpers deriving local paths from it.
package report

import (
	"fmt"
	"path/filepath"
)

// Report describes a single audit report entry from the listing page.
//
// Optional string fields hold "" when the listing row had no value. IsActive
// is tri-state: nil means the status cell was absent or not a recognized
// true/false literal.
type Report struct {
	Serial      int
	Title       string
	DateText    string
	DownloadURL string
	YearCode    string
	YearLabel   string
	ReportCode  string
	TypeCode    string
	IsActive    *bool
}

// SubDir returns the year subdirectory for this report, or "" when the year
// label is unknown and the file belongs directly under the output root.
func (self *Report) SubDir() string {
	if self.YearLabel == "" {
		return ""
	}
	return SanitizeDirName(self.YearLabel)
}

// Filename returns the sanitized local file name: zero-padded serial,
// underscore, title and a fixed .pdf suffix.
func (self *Report) Filename() string {
	return SanitizeFilename(fmt.Sprintf("%04d_%s.pdf", self.Serial, self.Title))
}

// TargetPath returns the destination path for saving the report under
// baseDir. Pure function, recomputed on demand.
func (self *Report) TargetPath(baseDir string) string {
	return filepath.Join(baseDir, self.SubDir(), self.Filename())
}
