// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

/*
Package convert provides fault-tolerant conversions for command-line input.

Malformed input collapses to zero or to a caller-supplied default instead of
an error. Callers that must tell "0" from "garbage" check the second return
value of the *OK variants.
*/
package convert

import (
	"strconv"
	"strings"
)

// ToInt64 parses a base-10 id, returning 0 on blank or malformed input.
func ToInt64(s string) int64 {
	v, _ := ToInt64OK(s)
	return v
}

// ToInt64OK parses a base-10 id and reports whether parsing succeeded.
func ToInt64OK(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ToIntD converts a string to an int, returning def if parsing fails or the
// string is blank.
func ToIntD(str string, def int) int {
	str = strings.TrimSpace(str)
	if str == "" {
		return def
	}

	if v, err := strconv.Atoi(str); err == nil {
		return v
	}
	return def
}
