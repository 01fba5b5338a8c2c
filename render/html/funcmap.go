package html

import (
	"fmt"
	"html/template"
	"time"

	"github.com/sonnes/lekha/core"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatTime":   formatTime,
		"formatNumber": formatNumber,
		"relativeTime": core.RelativeTime,
	}
}

// formatTime accepts a time.Time or *time.Time and formats it for display.
// Nil pointers render as empty strings.
func formatTime(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format("Jan 2, 2006 3:04 PM")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006 3:04 PM")
	default:
		return ""
	}
}

func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return formatNumber(n/1000) + "," + fmt.Sprintf("%03d", n%1000)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
