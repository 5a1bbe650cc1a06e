package fill

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/escform/escform/model"
)

// Result is the outcome of validating one question's current value. Errors
// are ordered most-specific first; a required failure suppresses all other
// checks.
type Result struct {
	OK     bool
	Errors []string
}

const msgRequired = "This question is required"

const dateLayout = "1/2/2006"

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[\d\s()+-]+$`)
	urlPattern   = regexp.MustCompile(`(?i)^(https?://)?([\w-]+\.)+[\w-]+(/[\w\-._~:/?#\[\]@!$&'()*+,;=]*)?$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

func ok() Result {
	return Result{OK: true}
}

func fail(errs ...string) Result {
	return Result{Errors: errs}
}

func resultOf(errs []string) Result {
	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	return ok()
}

// Validate runs the declarative rules of a question against its current
// value: required first (short-circuiting), then type-specific shape and
// range checks, only when a value is present.
func Validate(q model.Question, value any) Result {
	return defaultRegistry.ResolveOrPlaceholder(q.Type).Validate(q, value)
}

var defaultRegistry = NewRegistry()

// isEmpty reports answer absence: nil, empty string, empty array, empty
// address. A false boolean and a zero number are present values.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case model.AddressValue:
		return v.Empty()
	case *model.AddressValue:
		return v == nil || v.Empty()
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func checkRequired(q model.Question, value any) (Result, bool) {
	if isEmpty(value) {
		if q.Required {
			return fail(msgRequired), true
		}
		return ok(), true
	}
	return Result{}, false
}

func validateAlwaysOK(model.Question, any) Result {
	return ok()
}

func validateRequiredOnly(q model.Question, value any) Result {
	res, done := checkRequired(q, value)
	if done {
		return res
	}
	return ok()
}

func validateBool(q model.Question, value any) Result {
	return validateRequiredOnly(q, value)
}

func validateText(q model.Question, value any) Result {
	res, done := checkRequired(q, value)
	if done {
		return res
	}

	s, _ := value.(string)
	length := utf8.RuneCountInString(s)

	var errs []string
	if min, present := q.Metadata.MinNumber(); present && length < int(min) {
		errs = append(errs, fmt.Sprintf("Minimum %d characters required", int(min)))
	}
	if max, present := q.Metadata.MaxNumber(); present && length > int(max) {
		errs = append(errs, fmt.Sprintf("Maximum %d characters allowed", int(max)))
	}
	if q.Metadata.Pattern != "" {
		if re, err := regexp.Compile(q.Metadata.Pattern); err == nil && !re.MatchString(s) {
			errs = append(errs, "Please enter a valid format")
		}
	}
	return resultOf(errs)
}

func validateNumber(q model.Question, value any) Result {
	res, done := checkRequired(q, value)
	if done {
		return res
	}

	n, valid := numberValue(value)
	if !valid || math.IsNaN(n) || math.IsInf(n, 0) {
		return fail("Please enter a valid number")
	}

	min, hasMin := q.Metadata.MinNumber()
	max, hasMax := q.Metadata.MaxNumber()
	switch {
	case hasMin && hasMax:
		if n < min || n > max {
			return fail(fmt.Sprintf("Value must be between %s and %s", formatNumber(min), formatNumber(max)))
		}
	case hasMin:
		if n < min {
			return fail(fmt.Sprintf("Value must be at least %s", formatNumber(min)))
		}
	case hasMax:
		if n > max {
			return fail(fmt.Sprintf("Value must be at most %s", formatNumber(max)))
		}
	}
	return ok()
}

func validateDate(q model.Question, value any) Result {
	res, done := checkRequired(q, value)
	if done {
		return res
	}

	d, valid := dateValue(value)
	if !valid {
		return fail("Please enter a valid date")
	}
	d = calendarDay(d)

	min, hasMin := q.Metadata.MinDate()
	max, hasMax := q.Metadata.MaxDate()
	min, max = calendarDay(min), calendarDay(max)
	switch {
	case hasMin && hasMax:
		if d.Before(min) || d.After(max) {
			return fail(fmt.Sprintf("Date must be between %s and %s", min.Format(dateLayout), max.Format(dateLayout)))
		}
	case hasMin:
		if d.Before(min) {
			return fail(fmt.Sprintf("Date must be on or after %s", min.Format(dateLayout)))
		}
	case hasMax:
		if d.After(max) {
			return fail(fmt.Sprintf("Date must be on or before %s", max.Format(dateLayout)))
		}
	}
	return ok()
}

func validateSelection(q model.Question, value any) Result {
	res, done := checkRequired(q, value)
	if done {
		return res
	}

	count := len(stringSlice(value))

	var errs []string
	if min, present := q.Metadata.MinNumber(); present && count < int(min) {
		errs = append(errs, fmt.Sprintf("Please select at least %d options", int(min)))
	}
	if max, present := q.Metadata.MaxNumber(); present && count > int(max) {
		errs = append(errs, fmt.Sprintf("Please select at most %d options", int(max)))
	}
	return resultOf(errs)
}

func validateEmail(q model.Question, value any) Result {
	res, done := checkRequired(q, value)
	if done {
		return res
	}

	s, _ := value.(string)
	if !emailPattern.MatchString(s) {
		return fail("Please enter a valid email address")
	}
	return ok()
}

func validatePhone(q model.Question, value any) Result {
	res, done := checkRequired(q, value)
	if done {
		return res
	}

	s, _ := value.(string)
	if !phonePattern.MatchString(s) {
		return fail("Please enter a valid phone number")
	}
	if len(nonDigits.ReplaceAllString(s, "")) < 6 {
		return fail("Phone number is too short")
	}
	if !q.Metadata.AllowAnyCountry && len(q.Metadata.AllowedCountries) > 0 {
		if !dialCodeAllowed(s, q.Metadata.AllowedCountries) {
			return fail("Please select an allowed country")
		}
	}
	return ok()
}

func dialCodeAllowed(number string, countries []string) bool {
	for _, code := range countries {
		c, known := model.CountryByCode(code)
		if known && strings.HasPrefix(number, c.DialCode) {
			return true
		}
	}
	return false
}

func validateURL(q model.Question, value any) Result {
	res, done := checkRequired(q, value)
	if done {
		return res
	}

	s, _ := value.(string)
	if !urlPattern.MatchString(s) {
		return fail("Please enter a valid URL format")
	}
	return ok()
}

func validateAddress(q model.Question, value any) Result {
	res, done := checkRequired(q, value)
	if done {
		return res
	}

	addr, valid := model.AddressFromValue(value)
	if !valid {
		return fail("Please enter a valid address")
	}

	m := q.Metadata
	var errs []string
	appendMissing := func(enabled, required bool, field, label string) {
		if enabled && required && field == "" {
			errs = append(errs, label+" is required")
		}
	}
	appendMissing(m.Address, m.AddressRequired, addr.Address, "Address")
	appendMissing(m.Address2, m.Address2Required, addr.Address2, "Address line 2")
	appendMissing(m.City, m.CityRequired, addr.City, "City")
	appendMissing(m.State, m.StateRequired, addr.State, "State")
	appendMissing(m.Zip, m.ZipRequired, addr.Zip, "Zip")
	appendMissing(m.PostalCode, m.PostalCodeRequired, addr.PostalCode, "Postal code")
	appendMissing(m.Country, m.CountryRequired, addr.Country, "Country")
	return resultOf(errs)
}

func numberValue(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func dateValue(value any) (time.Time, bool) {
	switch d := value.(type) {
	case time.Time:
		return d, true
	case string:
		if t, err := time.Parse("2006-01-02", d); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func stringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, isString := item.(string); isString {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
