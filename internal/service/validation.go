package service

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"classbook/internal/dateutil"
)

// FieldRule is one rule in a field's ordered rule list. Zero values mean
// "not checked"; Custom runs last.
type FieldRule struct {
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Custom    func(value any) bool
	Message   string
}

// ValidationResult accumulates errors per field. Fields short-circuit on
// their first failing rule but validation continues across fields.
type ValidationResult struct {
	Valid  bool
	Errors map[string][]string
}

func (r *ValidationResult) addError(field, message string) {
	r.Valid = false
	r.Errors[field] = append(r.Errors[field], message)
}

// FirstError returns one human-readable message for envelope display.
func (r *ValidationResult) FirstError() string {
	for _, messages := range r.Errors {
		if len(messages) > 0 {
			return messages[0]
		}
	}
	return ""
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	timePattern  = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
	namePattern  = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s]+$`)
	phonePattern = regexp.MustCompile(`^\(\d{2}\)\s\d{4,5}-\d{4}$`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	digitPattern = regexp.MustCompile(`\d`)
)

// ValidationService evaluates a rule table: each field name maps to an
// ordered list of rules. Payload structs can also be validated through
// their validator/v10 tags with Struct.
type ValidationService struct {
	rules    map[string][]FieldRule
	validate *validator.Validate
	log      zerolog.Logger
}

func NewValidationService(log zerolog.Logger) *ValidationService {
	s := &ValidationService{
		rules:    make(map[string][]FieldRule),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With().Str("service", "ValidationService").Logger(),
	}
	s.registerDefaultRules()
	return s
}

func (s *ValidationService) registerDefaultRules() {
	s.AddRule("email", FieldRule{
		Required: true,
		Pattern:  emailPattern,
		Message:  "email must be a valid address",
	})
	s.AddRule("password", FieldRule{
		Required:  true,
		MinLength: 6,
		Custom: func(value any) bool {
			str, ok := value.(string)
			if !ok {
				return false
			}
			return lowerPattern.MatchString(str) &&
				upperPattern.MatchString(str) &&
				digitPattern.MatchString(str)
		},
		Message: "password needs 6+ characters with upper, lower and digit",
	})
	s.AddRule("name", FieldRule{
		Required:  true,
		MinLength: 2,
		MaxLength: 100,
		Pattern:   namePattern,
		Message:   "name must contain only letters and spaces",
	})
	s.AddRule("phone", FieldRule{
		Pattern: phonePattern,
		Message: "phone must match (XX) XXXXX-XXXX",
	})
	s.AddRule("date", FieldRule{
		Required: true,
		Custom: func(value any) bool {
			str, ok := value.(string)
			if !ok {
				return false
			}
			return dateutil.IsStrictlyFuture(str, time.Now())
		},
		Message: "date must be valid and in the future",
	})
	s.AddRule("time", FieldRule{
		Required: true,
		Pattern:  timePattern,
		Message:  "time must match HH:MM",
	})
	s.AddRule("cpf", FieldRule{
		Custom: func(value any) bool {
			str, ok := value.(string)
			return ok && ValidateCPF(str)
		},
		Message: "invalid CPF",
	})
	s.AddRule("cnpj", FieldRule{
		Custom: func(value any) bool {
			str, ok := value.(string)
			return ok && ValidateCNPJ(str)
		},
		Message: "invalid CNPJ",
	})
}

// AddRule appends a rule to the field's ordered list.
func (s *ValidationService) AddRule(field string, rule FieldRule) {
	s.rules[field] = append(s.rules[field], rule)
}

// Validate runs every applicable rule for the requested fields (all known
// fields when none are named) against the data map.
func (s *ValidationService) Validate(data map[string]any, fields ...string) ValidationResult {
	result := ValidationResult{Valid: true, Errors: make(map[string][]string)}

	if len(fields) == 0 {
		for field := range s.rules {
			fields = append(fields, field)
		}
	}

	for _, field := range fields {
		if message, ok := s.checkField(field, data[field]); !ok {
			result.addError(field, message)
		}
	}
	return result
}

// ValidateField runs a single field's rules and returns its errors.
func (s *ValidationService) ValidateField(field string, value any) []string {
	if message, ok := s.checkField(field, value); !ok {
		return []string{message}
	}
	return nil
}

func (s *ValidationService) checkField(field string, value any) (string, bool) {
	for _, rule := range s.rules[field] {
		if message, ok := evalRule(rule, value); !ok {
			return message, false
		}
	}
	return "", true
}

func evalRule(rule FieldRule, value any) (string, bool) {
	str, isString := value.(string)
	empty := value == nil || (isString && strings.TrimSpace(str) == "")

	if rule.Required && empty {
		return messageOr(rule, "field is required"), false
	}
	if empty {
		return "", true
	}

	if rule.MinLength > 0 && isString && len(str) < rule.MinLength {
		return messageOr(rule, "value is too short"), false
	}
	if rule.MaxLength > 0 && isString && len(str) > rule.MaxLength {
		return messageOr(rule, "value is too long"), false
	}
	if rule.Pattern != nil && isString && !rule.Pattern.MatchString(str) {
		return messageOr(rule, "invalid format"), false
	}
	if rule.Custom != nil && !rule.Custom(value) {
		return messageOr(rule, "invalid value"), false
	}
	return "", true
}

func messageOr(rule FieldRule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}

// Struct validates a payload through its validator/v10 tags and folds the
// outcome into the same result shape the rule table produces.
func (s *ValidationService) Struct(payload any) ValidationResult {
	result := ValidationResult{Valid: true, Errors: make(map[string][]string)}

	err := s.validate.Struct(payload)
	if err == nil {
		return result
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		result.addError("_", "payload could not be validated")
		return result
	}
	for _, fe := range fieldErrors {
		result.addError(strings.ToLower(fe.Field()[:1])+fe.Field()[1:], "failed "+fe.Tag()+" validation")
	}
	return result
}

// ValidateRequired reports the subset of fields that are missing or blank.
func (s *ValidationService) ValidateRequired(data map[string]any, fields ...string) ValidationResult {
	result := ValidationResult{Valid: true, Errors: make(map[string][]string)}
	for _, field := range fields {
		value, ok := data[field]
		str, isString := value.(string)
		if !ok || value == nil || (isString && strings.TrimSpace(str) == "") {
			result.addError(field, "field '"+field+"' is required")
		}
		if n, isInt := value.(int); isInt && n == 0 {
			result.addError(field, "field '"+field+"' is required")
		}
	}
	return result
}
