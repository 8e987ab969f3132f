package util

import (
	"fmt"
	"strings"
	"time"
)

// Datetime is the format to use anywhere we need to output a date+time to an user.
func Datetime(iface interface{}) string {
	var t time.Time
	switch iface := iface.(type) {
	case time.Time:
		t = iface
	case TimeAsTimestamp:
		t = iface.Time()
	default:
		panic(fmt.Errorf("unexpected type %T", iface))
	}

	return t.Format("2006-01-02 15h04 MST")
}

// SignedPoints formats a rating delta with an explicit sign, eg. +16 or -3.
func SignedPoints(v int) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}

	return fmt.Sprintf("%d", v)
}

// Rating formats a rating the way players see it, without decimals.
func Rating(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

// JoinNames joins team member names the way they are displayed on a scoreboard.
func JoinNames(names ...string) string {
	filtered := make([]string, 0, len(names))
	for _, v := range names {
		if v = strings.TrimSpace(v); v != "" {
			filtered = append(filtered, v)
		}
	}

	return strings.Join(filtered, " & ")
}
