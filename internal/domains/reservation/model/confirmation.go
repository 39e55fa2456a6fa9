package model

import (
	"fmt"
	"strings"
)

const DefaultConfirmationPrefix = "RES"

// ConfirmationCode renders PREFIX-YYYY-NNN; the sequence grows past three digits when needed.
func ConfirmationCode(prefix string, year int, sequence int64) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultConfirmationPrefix
	}

	return fmt.Sprintf("%s-%04d-%03d", prefix, year, sequence)
}
