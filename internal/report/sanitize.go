package report

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Filenames longer than this, UTF-8 encoded, get their stem truncated.
const maxFilenameBytes = 200

var (
	invalidChars   = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	underscoreRuns = regexp.MustCompile(`_+`)
	underscoreDot  = regexp.MustCompile(`_+\.`)
)

// SanitizeFilename returns a filesystem-safe version of name: every run of
// characters outside [A-Za-z0-9._-] becomes a single underscore, repeated
// underscores collapse, an underscore right before a dot is dropped and the
// result is trimmed of leading/trailing "._ ". The returned name is never
// empty and never exceeds maxFilenameBytes bytes. Over-long names keep their
// extension and lose stem bytes; an extension that alone exceeds the cap is
// cut along with the rest of the name.
func SanitizeFilename(name string) string {
	s := invalidChars.ReplaceAllString(name, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	s = underscoreDot.ReplaceAllString(s, ".")
	s = strings.Trim(s, "._ ")
	if s == "" {
		s = "report.pdf"
	}

	if len(s) <= maxFilenameBytes {
		return s
	}
	return truncateFilename(s)
}

func truncateFilename(s string) string {
	stem, ext := splitExt(s)
	if ext == "" {
		ext = ".pdf"
	}

	// A pathological extension longer than the cap cannot be kept whole;
	// cut the full name instead so the byte limit always holds.
	if len(ext) >= maxFilenameBytes {
		s = strings.TrimRight(truncateBytes(s, maxFilenameBytes), "._ ")
		if s == "" {
			return "report"
		}
		return s
	}

	stem = strings.TrimRight(truncateBytes(stem, maxFilenameBytes-len(ext)),
		"._ ")
	if stem == "" {
		stem = "report"
	}
	return stem + ext
}

// truncateBytes cuts s to at most n bytes, dropping a trailing incomplete
// multi-byte sequence left by the cut.
func truncateBytes(s string, n int) string {
	if len(s) > n {
		s = s[:n]
	}
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

func splitExt(s string) (stem, ext string) {
	if i := strings.LastIndexByte(s, '.'); i > 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

// SanitizeDirName sanitizes a directory name with the same character
// replacement as SanitizeFilename, but without collapsing underscores and
// without a length cap: year labels are short and stay readable as is.
func SanitizeDirName(name string) string {
	s := invalidChars.ReplaceAllString(name, "_")
	s = strings.Trim(s, "._ ")
	if s == "" {
		return "Unknown-Year"
	}
	return s
}
