package service

import (
	"strconv"
	"time"
)

// Audit old/new values are plain human-readable strings regardless of the
// source column type. Nil optionals render as the empty string.

func fmtUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func fmtBool(v bool) string {
	return strconv.FormatBool(v)
}

func fmtIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func fmtStrPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func fmtTimePtr(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
