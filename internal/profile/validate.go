package profile

import (
	"fmt"
	"strings"
)

// Limits bounds the photo gallery
type Limits struct {
	MaxPhotos     int
	MaxPhotoBytes int
}

// DefaultLimits matches the upload form: five photos of at most 5 MiB each
var DefaultLimits = Limits{MaxPhotos: 5, MaxPhotoBytes: 5 << 20}

// Violation is a single field-level validation failure
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// Violations collects every failure of one payload
type Violations []Violation

// Add appends a violation
func (v *Violations) Add(field, message string) {
	*v = append(*v, Violation{Field: field, Message: message})
}

// ValidationError carries the complete list of violations of a section payload
type ValidationError struct {
	Section    Section
	Violations Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s section failed validation: %s", e.Section, strings.Join(e.Details(), "; "))
}

// Details renders each violation as "field: message"
func (e *ValidationError) Details() []string {
	out := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = v.String()
	}
	return out
}

// Validator checks section payloads against the registry rules
type Validator struct {
	limits Limits
}

// NewValidator creates a validator; zero limits fall back to DefaultLimits
func NewValidator(limits Limits) *Validator {
	if limits.MaxPhotos <= 0 {
		limits.MaxPhotos = DefaultLimits.MaxPhotos
	}
	if limits.MaxPhotoBytes <= 0 {
		limits.MaxPhotoBytes = DefaultLimits.MaxPhotoBytes
	}
	return &Validator{limits: limits}
}

// Validate runs every rule of the payload's section and returns a
// *ValidationError listing all violations, or nil.
func (v *Validator) Validate(p Payload) error {
	def, err := Lookup(p.Section())
	if err != nil {
		return err
	}
	var violations Violations
	for _, rule := range def.Rules {
		rule.check(p, v.limits, &violations)
	}
	if len(violations) > 0 {
		return &ValidationError{Section: def.ID, Violations: violations}
	}
	return nil
}

// Validate checks a payload with DefaultLimits
func Validate(p Payload) error {
	return NewValidator(DefaultLimits).Validate(p)
}

// DecodeAndValidate decodes a raw section body and validates it
func (v *Validator) DecodeAndValidate(section Section, raw []byte) (Payload, error) {
	p, err := Decode(section, raw)
	if err != nil {
		return nil, err
	}
	if err := v.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}
