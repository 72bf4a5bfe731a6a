package common

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ShortHashHead and ShortHashTail bound the abbreviated hash form.
const (
	ShortHashHead = 16
	ShortHashTail = 6
)

// GetIntFromStr parse int from decimal string
func GetIntFromStr(str string) (int, error) {
	res, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return 0, fmt.Errorf("wrong number '%v': %w", str, err)
	}
	return res, nil
}

// IsDigits is true for a non empty string of ascii digits.
func IsDigits(str string) bool {
	if str == "" {
		return false
	}
	for _, c := range str {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ShortHash abbreviates long hashes as head…tail for display.
func ShortHash(hash string) string {
	if utf8.RuneCountInString(hash) <= 20 {
		return hash
	}
	return hash[:ShortHashHead] + "…" + hash[len(hash)-ShortHashTail:]
}
