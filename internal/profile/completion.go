package profile

import (
	"fmt"
	"math"

	"matrimony-backend/internal/models"
)

// PaymentPolicy decides how the reserved payment section takes part in completion
type PaymentPolicy string

const (
	// PaymentExcluded never counts payment: the resolver stops after images
	PaymentExcluded PaymentPolicy = "excluded"
	// PaymentRequired makes payment the last step, complete once a payment is recorded
	PaymentRequired PaymentPolicy = "required"
)

// ParsePaymentPolicy validates a configured policy; empty means excluded
func ParsePaymentPolicy(s string) (PaymentPolicy, error) {
	switch PaymentPolicy(s) {
	case "", PaymentExcluded:
		return PaymentExcluded, nil
	case PaymentRequired:
		return PaymentRequired, nil
	}
	return "", fmt.Errorf("unknown payment policy %q", s)
}

// CompletionFields is the fixed list of fields that make up the completion
// percentage. It is kept apart from the registry field lists.
var CompletionFields = []string{
	"profileCreatedFor", "name", "gender", "dateOfBirth", "martialStatus", "education", "jobType",
	"jobTitle", "income", "height", "weight", "complexion", "mobileNumber",
	"nativePlace", "motherTongue", "fatherName", "fatherOccupation",
	"motherName", "motherOccupation", "familyType", "currentAddress", "areYouSaved", "areYouBaptized",
	"areYouAnointed", "churchName", "denomination", "pastorName", "pastorMobileNumber",
	"churchAddress", "exMinAge", "exMaxAge", "exEducation", "exJobType", "exIncome",
	"exComplexion",
}

// Percentage returns round(filled / (len(CompletionFields)+1) * 100), where
// one extra unit is credited for having at least one photo.
func Percentage(p *models.Profile) int {
	if p == nil {
		return 0
	}
	done := 0
	for _, field := range CompletionFields {
		if HasValue(p, field) {
			done++
		}
	}
	if len(p.Photos) > 0 {
		done++
	}
	total := len(CompletionFields) + 1
	return int(math.Round(float64(done) / float64(total) * 100))
}

// Tracker computes per-section completion and the next incomplete section
type Tracker struct {
	Payment PaymentPolicy
}

// NewTracker returns a tracker for the given payment policy
func NewTracker(policy PaymentPolicy) Tracker {
	if policy == "" {
		policy = PaymentExcluded
	}
	return Tracker{Payment: policy}
}

// Percentage is the package-level Percentage
func (Tracker) Percentage(p *models.Profile) int {
	return Percentage(p)
}

// IsSectionComplete reports whether one section is complete on the profile
func (t Tracker) IsSectionComplete(s Section, p *models.Profile) bool {
	if p == nil {
		return false
	}
	switch s {
	case SectionImages:
		return len(p.Photos) > 0
	case SectionPayment:
		return t.Payment == PaymentRequired && p.PaymentCompletedAt != nil
	}
	def, err := Lookup(s)
	if err != nil {
		return false
	}
	for _, field := range def.RequiredFields() {
		if !HasValue(p, field) {
			return false
		}
	}
	return true
}

// SectionStates maps every section to its completion flag
func (t Tracker) SectionStates(p *models.Profile) map[Section]bool {
	out := make(map[Section]bool, len(Order))
	for _, s := range Order {
		out[s] = t.IsSectionComplete(s, p)
	}
	return out
}

// counted reports whether a section takes part in overall completeness
func (t Tracker) counted(s Section) bool {
	return s != SectionPayment || t.Payment == PaymentRequired
}

// NextIncomplete returns the first incomplete section in canonical order.
// ok is false when the profile is complete.
func (t Tracker) NextIncomplete(p *models.Profile) (next Section, ok bool) {
	for _, s := range Order {
		if !t.counted(s) {
			continue
		}
		if !t.IsSectionComplete(s, p) {
			return s, true
		}
	}
	return "", false
}

// IsComplete reports whether no counted section is incomplete
func (t Tracker) IsComplete(p *models.Profile) bool {
	_, pending := t.NextIncomplete(p)
	return !pending
}

// NextSection is NextIncomplete as a nullable value for JSON responses
func (t Tracker) NextSection(p *models.Profile) *Section {
	next, ok := t.NextIncomplete(p)
	if !ok {
		return nil
	}
	return &next
}
