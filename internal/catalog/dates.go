package catalog

import "time"

const dateLayout = "2006-01-02"

var dateInputLayouts = []string{
	dateLayout,
	"1/2/2006",
	time.RFC3339,
}

// normalizeDate accepts a calendar date as YYYY-MM-DD, MM/DD/YYYY or RFC 3339,
// optionally wrapped in quotes, and returns it as YYYY-MM-DD. RFC 3339 values
// keep the date as written rather than shifting to UTC.
func normalizeDate(s string) (string, error) {
	s = unquote(s)
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout), nil
		}
	}
	return "", validationError("invalid date %q", s)
}

// normalizeDatePtr normalizes an optional date in place.
func normalizeDatePtr(p *string) (*string, error) {
	if p == nil {
		return nil, nil
	}
	d, err := normalizeDate(*p)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
