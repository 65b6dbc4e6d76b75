package names

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxLength is the longest filename most filesystems accept
const MaxLength = 255

// IllegalChars are the characters rejected anywhere in a filename
const IllegalChars = `<>:"/\|?*`

// Validation messages shown next to an invalid row
const (
	MsgEmpty        = "Filename cannot be empty"
	MsgIllegalChars = `Contains illegal characters: < > : " / \ | ? *`
	MsgReserved     = "Reserved system name"
	MsgTooLong      = "Filename too long (max 255 characters)"
	MsgInvalid      = "Invalid filename"
	MsgTrailing     = "Cannot end with dot or space"
)

// ErrInvalidName is wrapped by ValidationResult.Err
var ErrInvalidName = errors.New("invalid filename")

// ValidationResult is derived from a candidate name and never stored
type ValidationResult struct {
	Valid bool
	Error string // empty when Valid
}

// Err returns nil for a valid result, otherwise ErrInvalidName wrapped with the message
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidName, r.Error)
}

var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// Validate checks a filename against filesystem-safety rules.
// Rules run in a fixed order and the first failure wins.
func Validate(name string) ValidationResult {
	if strings.TrimSpace(name) == "" {
		return invalid(MsgEmpty)
	}

	if strings.ContainsAny(name, IllegalChars) {
		return invalid(MsgIllegalChars)
	}

	if IsReserved(name) {
		return invalid(MsgReserved)
	}

	if utf8.RuneCountInString(name) > MaxLength {
		return invalid(MsgTooLong)
	}

	if name == "." {
		return invalid(MsgInvalid)
	}

	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, " ") {
		return invalid(MsgTrailing)
	}

	return ValidationResult{Valid: true}
}

// IsReserved reports whether the stem before the first dot is a reserved device name
func IsReserved(name string) bool {
	stem, _, _ := strings.Cut(name, ".")
	return reservedNames[strings.ToUpper(stem)]
}

func invalid(msg string) ValidationResult {
	return ValidationResult{Valid: false, Error: msg}
}
