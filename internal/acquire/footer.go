package acquire

import (
	"regexp"
	"strings"
	"time"
)

// Page footers carry a filing-system stamp like
//
//	12/31/2024 2:50:52 PM Page 1 of 5
//
// The stamp identifies when the copy was generated, so the most recent one
// found across all pages decides which of several filings for the same
// incident is current.
var footerStampRe = regexp.MustCompile(`(?i)(\d{1,2}/\d{1,2}/\d{4})\s+(\d{1,2}:\d{2}:\d{2})\s*(AM|PM)`)

const footerStampLayout = "1/2/2006 3:04:05 PM"

// ParseFooterTimestamp returns the most recent footer stamp in text, or nil
// when no parseable stamp is present.
func ParseFooterTimestamp(text string) *time.Time {
	matches := footerStampRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var newest *time.Time
	for _, m := range matches {
		ts, err := time.Parse(footerStampLayout, m[1]+" "+m[2]+" "+strings.ToUpper(m[3]))
		if err != nil {
			continue
		}
		if newest == nil || ts.After(*newest) {
			t := ts
			newest = &t
		}
	}
	return newest
}
