package watch

import "time"

// Page is the cleaned-up result of fetching one target URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// SectionStatus is one section's seat availability as reported by analysis.
type SectionStatus struct {
	SectionID  string `json:"section_id"`
	OpenSeats  int    `json:"open_seats"`
	TotalSeats int    `json:"total_seats"`
	Waitlist   int    `json:"waitlist"`
}

// CheckResult is the analyzer's verdict for one check cycle. The JSON tags
// match the schema the model is instructed to return.
type CheckResult struct {
	Available bool            `json:"is_available"`
	Sections  []SectionStatus `json:"sections"`
	Summary   string          `json:"raw_text_summary"`
}

// OpenSectionIDs returns the ids of sections with at least one open seat,
// preserving the analyzer's order.
func (r *CheckResult) OpenSectionIDs() []string {
	var ids []string
	for _, s := range r.Sections {
		if s.OpenSeats > 0 {
			ids = append(ids, s.SectionID)
		}
	}
	return ids
}

// NotificationOutcome is the per-recipient result of one alert delivery.
type NotificationOutcome struct {
	Success   bool
	MessageID string
	Recipient string
	Error     string
	SentAt    time.Time
}
