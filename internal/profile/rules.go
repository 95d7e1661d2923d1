package profile

import (
	"fmt"
	"slices"
	"strings"

	"matrimony-backend/internal/models"
)

// Rule validates one field of a section payload
type Rule interface {
	// Field is the payload field the rule owns
	Field() string
	// Required reports whether the field must be filled for the section to be complete
	Required() bool
	check(p Payload, lim Limits, v *Violations)
}

type textRule[P Payload] struct {
	field    string
	required string
	options  []string
	invalid  string
	get      func(P) string
}

func (r textRule[P]) Field() string  { return r.field }
func (r textRule[P]) Required() bool { return r.required != "" }

func (r textRule[P]) check(p Payload, _ Limits, v *Violations) {
	typed, ok := p.(P)
	if !ok {
		return
	}
	val := strings.TrimSpace(r.get(typed))
	if val == "" {
		if r.required != "" {
			v.Add(r.field, r.required)
		}
		return
	}
	if len(r.options) > 0 && !slices.Contains(r.options, val) {
		v.Add(r.field, r.invalid)
	}
}

// freeText declares a free-text field; an empty required message makes it optional
func freeText[P Payload](field, required string, get func(P) string) textRule[P] {
	return textRule[P]{field: field, required: required, get: get}
}

// choice declares a field restricted to Options[field]
func choice[P Payload](field, required, invalid string, get func(P) string) textRule[P] {
	return textRule[P]{field: field, required: required, options: Options[field], invalid: invalid, get: get}
}

type dateRule[P Payload] struct {
	field    string
	required string
	get      func(P) string
}

func (r dateRule[P]) Field() string  { return r.field }
func (r dateRule[P]) Required() bool { return true }

func (r dateRule[P]) check(p Payload, _ Limits, v *Violations) {
	typed, ok := p.(P)
	if !ok {
		return
	}
	val := strings.TrimSpace(r.get(typed))
	if val == "" {
		v.Add(r.field, r.required)
		return
	}
	if _, err := ParseDate(val); err != nil {
		v.Add(r.field, "Invalid date")
	}
}

type numberRule[P Payload] struct {
	field    string
	required string
	min      int
	minMsg   string
	max      int
	maxMsg   string
	get      func(P) Number
}

func (r numberRule[P]) Field() string  { return r.field }
func (r numberRule[P]) Required() bool { return true }

func (r numberRule[P]) check(p Payload, _ Limits, v *Violations) {
	typed, ok := p.(P)
	if !ok {
		return
	}
	n := r.get(typed)
	switch {
	case n.Invalid:
		v.Add(r.field, "Must be a number")
	case !n.Set:
		v.Add(r.field, r.required)
	case n.Value < r.min:
		v.Add(r.field, r.minMsg)
	case r.max > 0 && n.Value > r.max:
		v.Add(r.field, r.maxMsg)
	}
}

const (
	maxSiblings = 20
	maxAge      = 100
)

func count[P Payload](field string, get func(P) Number) numberRule[P] {
	return numberRule[P]{field: field, required: "Required",
		min: 0, minMsg: "Must be 0 or more",
		max: maxSiblings, maxMsg: fmt.Sprintf("Must be %d or less", maxSiblings),
		get: get}
}

// notAbove checks field <= limit field when both are set. It never reports
// a missing value; the numberRule for each side does that.
type notAbove[P Payload] struct {
	field   string
	message string
	get     func(P) (value, limit Number)
}

func (r notAbove[P]) Field() string  { return r.field }
func (r notAbove[P]) Required() bool { return false }

func (r notAbove[P]) check(p Payload, _ Limits, v *Violations) {
	typed, ok := p.(P)
	if !ok {
		return
	}
	value, limit := r.get(typed)
	if value.Set && limit.Set && value.Value > limit.Value {
		v.Add(r.field, r.message)
	}
}

// atLeast checks field >= floor field when both are set
type atLeast[P Payload] struct {
	field   string
	message string
	get     func(P) (value, floor Number)
}

func (r atLeast[P]) Field() string  { return r.field }
func (r atLeast[P]) Required() bool { return false }

func (r atLeast[P]) check(p Payload, _ Limits, v *Violations) {
	typed, ok := p.(P)
	if !ok {
		return
	}
	value, floor := r.get(typed)
	if value.Set && floor.Set && value.Value < floor.Value {
		v.Add(r.field, r.message)
	}
}

// addressRule requires all four address parts together
type addressRule[P Payload] struct {
	field  string
	states []string
	get    func(P) *models.Address
}

func (r addressRule[P]) Field() string  { return r.field }
func (r addressRule[P]) Required() bool { return true }

func (r addressRule[P]) check(p Payload, _ Limits, v *Violations) {
	typed, ok := p.(P)
	if !ok {
		return
	}
	a := r.get(typed)
	if a == nil {
		a = &models.Address{}
	}
	parts := []struct{ name, label, value string }{
		{"street", "Street", a.Street},
		{"city", "City", a.City},
		{"state", "State", a.State},
		{"pincode", "Pincode", a.Pincode},
	}
	for _, part := range parts {
		path := r.field + "." + part.name
		val := strings.TrimSpace(part.value)
		if val == "" {
			v.Add(path, part.label+" is required")
			continue
		}
		if part.name == "state" && len(r.states) > 0 && !slices.Contains(r.states, val) {
			v.Add(path, "Invalid state")
		}
	}
}

// galleryRule checks the photo gallery: count bounds, per-photo data and dimensions
type galleryRule struct{}

func (galleryRule) Field() string  { return "gallery" }
func (galleryRule) Required() bool { return true }

func (galleryRule) check(p Payload, lim Limits, v *Violations) {
	g, ok := p.(*PhotoGallery)
	if !ok {
		return
	}
	switch {
	case len(g.Gallery) == 0:
		v.Add("gallery", "At least one photo is required")
		return
	case len(g.Gallery) > lim.MaxPhotos:
		v.Add("gallery", fmt.Sprintf("At most %d photos are allowed", lim.MaxPhotos))
	}
	for i, photo := range g.Gallery {
		checkPhoto(fmt.Sprintf("gallery[%d]", i), photo, lim, v)
	}
	if idx := g.ProfilePictureIndex; idx.Invalid || (idx.Set && (idx.Value < 0 || idx.Value >= len(g.Gallery))) {
		v.Add("profilePictureIndex", "Invalid profile picture index")
	}
}
