package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	emailRegexp    = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.\w{2,}$`)
	dateRegexp     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRegexp     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d{1,6})?$`)
	dateTimeRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d{1,6})?$`)
)

func isEmail(s string) bool {
	return emailRegexp.MatchString(s)
}

func isURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// isDate checks both the shape and the calendar: "2024-02-30" is rejected.
func isDate(s string, format DateFormat) bool {
	var (
		re     *regexp.Regexp
		layout string
	)

	switch format {
	case DateOnly:
		re, layout = dateRegexp, time.DateOnly
	case TimeOnly:
		re, layout = timeRegexp, time.TimeOnly
	case DateTime:
		re, layout = dateTimeRegexp, time.DateTime
	default:
		return false
	}

	if !re.MatchString(s) {
		return false
	}

	// time.Parse accepts a fractional second after a seconds field even
	// when the layout has none.
	_, err := time.Parse(layout, s)
	return err == nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
