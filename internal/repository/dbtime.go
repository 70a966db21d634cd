package repository

import (
	"fmt"
	"strings"
	"time"
)

// timeLayout is how timestamps are written to the DB (UTC, millisecond
// precision).  Fixed width keeps string comparisons chronological.
const timeLayout = "2006-01-02 15:04:05.000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timeScanner reads a DATETIME column whether the driver hands back a
// time.Time (MySQL with parseTime) or text.
type timeScanner struct{ dst *time.Time }

func scanTime(dst *time.Time) timeScanner { return timeScanner{dst: dst} }

func (s timeScanner) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*s.dst = x.UTC()
		return nil
	case string:
		return s.parse(x)
	case []byte:
		return s.parse(string(x))
	case nil:
		*s.dst = time.Time{}
		return nil
	}
	return fmt.Errorf("repository: cannot scan %T into time", v)
}

func (s timeScanner) parse(v string) error {
	v = strings.TrimSpace(v)
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			*s.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("repository: invalid time %q", v)
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
