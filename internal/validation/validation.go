package validation

import (
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Limits for farmer input.
const (
	MaxNameLength    = 100
	MaxVillageLength = 100
	MaxLandSize      = 10000 // Acres
	MaxMessageLength = 2000
	MaxQueryLength   = 500
)

// MobilePattern is a ten digit Indian mobile number.
var MobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// ProfileInput is the raw login form.
type ProfileInput struct {
	Name     string
	Village  string
	Phone    string
	LandSize string
	Language string
}

// ProfileErrors maps form fields to messages.
type ProfileErrors map[string]string

// ValidateProfile checks the login form and returns the cleaned phone number
// and land size. The language is resolved by the caller against the
// configured language list.
func ValidateProfile(in ProfileInput) (phone string, land float64, errs ProfileErrors) {
	errs = ProfileErrors{}

	if ok, msg := ValidateName(in.Name); !ok {
		errs["name"] = msg
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Village)) > MaxVillageLength {
		errs["village"] = "Village name is too long"
	}

	phone, ok := NormalizePhone(in.Phone)
	if !ok {
		errs["phone"] = "Enter a 10 digit mobile number"
	}

	land, ok, msg := ParseLandSize(in.LandSize)
	if !ok {
		errs["land_size"] = msg
	}

	return phone, land, errs
}

// ValidateName checks a farmer's display name.
func ValidateName(name string) (bool, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, "Name is required"
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return false, "Name is too long"
	}
	return true, ""
}

// NormalizePhone strips separators and an optional +91, 91 or 0 prefix and
// checks the rest is a mobile number. An empty phone is allowed.
func NormalizePhone(phone string) (string, bool) {
	phone = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, phone)
	if phone == "" {
		return "", true
	}

	switch {
	case strings.HasPrefix(phone, "+91"):
		phone = phone[3:]
	case len(phone) == 12 && strings.HasPrefix(phone, "91"):
		phone = phone[2:]
	case len(phone) == 11 && strings.HasPrefix(phone, "0"):
		phone = phone[1:]
	}

	if !MobilePattern.MatchString(phone) {
		return "", false
	}
	return phone, true
}

// ParseLandSize parses a land holding in acres. Empty means zero.
func ParseLandSize(raw string) (float64, bool, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true, ""
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, "Land size must be a number"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > MaxLandSize {
		return 0, false, "Land size must be between 0 and 10000 acres"
	}
	return v, true, ""
}

// ValidateQuery checks a chat question.
func ValidateQuery(query string) (bool, string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return false, "Please type a question"
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return false, "Question is too long"
	}
	return true, ""
}

// ValidateMessage checks a contact form message.
func ValidateMessage(msg string) (bool, string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return false, "Message is required"
	}
	if utf8.RuneCountInString(msg) > MaxMessageLength {
		return false, "Message is too long"
	}
	return true, ""
}

// allowedImageTypes are the upload formats the classifiers accept.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// DetectImageType sniffs the upload and returns its content type if it is an
// accepted image format.
func DetectImageType(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	ct := http.DetectContentType(data)
	return ct, allowedImageTypes[ct]
}

// ValidateImage checks an uploaded leaf photo against the size limit and
// accepted formats, returning the sniffed content type.
func ValidateImage(data []byte, maxBytes int64) (string, bool, string) {
	if len(data) == 0 {
		return "", false, "Please choose a photo"
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", false, "Photo is too large"
	}
	ct, ok := DetectImageType(data)
	if !ok {
		return ct, false, "Photo must be a JPEG, PNG or WebP image"
	}
	return ct, true, ""
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// SafeRedirect returns target if it is a local path, otherwise fallback.
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return fallback
	}
	return target
}
