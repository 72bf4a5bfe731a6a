package hive

import (
	"errors"
	"fmt"
	"regexp"
)

// hive errors
var (
	ErrMissingUnsignedTx = errors.New("server did not return unsignedTx")
	ErrTransport         = errors.New("backend request failed")
	ErrBadLoginResult    = errors.New("wrong login result")
	ErrNoUser            = errors.New("no game user in response")
)

// LoginRequiredPatterns match server messages that mean the player session is gone.
var LoginRequiredPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)로그인`),
	regexp.MustCompile(`(?i)hive\s*로그인`),
	regexp.MustCompile(`(?i)sign\s*in`),
	regexp.MustCompile(`(?i)login`),
	regexp.MustCompile(`(?i)session`),
	regexp.MustCompile(`(?i)expired`),
	regexp.MustCompile(`(?i)unauthori[sz]ed`),
}

// IsLoginRequired reports whether a server message asks for a new login.
func IsLoginRequired(message string) bool {
	for _, re := range LoginRequiredPatterns {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// ServerError is a rejected backend request.
type ServerError struct {
	Status  int // http status, 200 for success=false bodies
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server rejected request (status %v): %v", e.Status, e.Message)
}

// LoginRequired reports whether the rejection asks for a new login.
func (e *ServerError) LoginRequired() bool {
	return IsLoginRequired(e.Message)
}
