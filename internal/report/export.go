package report

// Plain is the flat JSON projection of a Report. Optional strings and the
// tri-state status serialize as null when absent, so consumers can tell
// "known false" from "unknown".
type Plain struct {
	Serial      int     `json:"serial"`
	Title       string  `json:"title"`
	DateText    string  `json:"date_text"`
	DownloadURL string  `json:"download_url"`
	YearCode    *string `json:"year_code"`
	YearLabel   *string `json:"year_label"`
	ReportCode  *string `json:"report_code"`
	TypeCode    *string `json:"type_code"`
	IsActive    *bool   `json:"is_active"`
}

// ToPlain projects reports into their flat form, in input order.
func ToPlain(reports []Report) []Plain {
	plain := make([]Plain, len(reports))
	for i := range reports {
		r := &reports[i]
		plain[i] = Plain{
			Serial:      r.Serial,
			Title:       r.Title,
			DateText:    r.DateText,
			DownloadURL: r.DownloadURL,
			YearCode:    optional(r.YearCode),
			YearLabel:   optional(r.YearLabel),
			ReportCode:  optional(r.ReportCode),
			TypeCode:    optional(r.TypeCode),
			IsActive:    r.IsActive,
		}
	}
	return plain
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
