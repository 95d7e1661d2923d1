package profile

import (
	"fmt"
	"slices"

	"matrimony-backend/internal/models"
)

// presence reports, per stored field, whether the field holds a value.
// Strings must be non-empty; numbers count as soon as they are non-null.
var presence = map[string]func(p *models.Profile) bool{
	"profileCreatedFor":      func(p *models.Profile) bool { return filled(p.ProfileCreatedFor) },
	"name":                   func(p *models.Profile) bool { return filled(p.Name) },
	"about":                  func(p *models.Profile) bool { return filled(p.About) },
	"gender":                 func(p *models.Profile) bool { return filled(p.Gender) },
	"dateOfBirth":            func(p *models.Profile) bool { return p.DateOfBirth != nil },
	"martialStatus":          func(p *models.Profile) bool { return filled(p.MartialStatus) },
	"education":              func(p *models.Profile) bool { return filled(p.Education) },
	"jobType":                func(p *models.Profile) bool { return filled(p.JobType) },
	"jobTitle":               func(p *models.Profile) bool { return filled(p.JobTitle) },
	"income":                 func(p *models.Profile) bool { return filled(p.Income) },
	"height":                 func(p *models.Profile) bool { return filled(p.Height) },
	"weight":                 func(p *models.Profile) bool { return filled(p.Weight) },
	"complexion":             func(p *models.Profile) bool { return filled(p.Complexion) },
	"mobileNumber":           func(p *models.Profile) bool { return filled(p.MobileNumber) },
	"currentAddress":         func(p *models.Profile) bool { return p.CurrentAddress.Filled() },
	"nativePlace":            func(p *models.Profile) bool { return filled(p.NativePlace) },
	"motherTongue":           func(p *models.Profile) bool { return filled(p.MotherTongue) },
	"fatherName":             func(p *models.Profile) bool { return filled(p.FatherName) },
	"fatherOccupation":       func(p *models.Profile) bool { return filled(p.FatherOccupation) },
	"motherName":             func(p *models.Profile) bool { return filled(p.MotherName) },
	"motherOccupation":       func(p *models.Profile) bool { return filled(p.MotherOccupation) },
	"familyType":             func(p *models.Profile) bool { return filled(p.FamilyType) },
	"youngerBrothers":        func(p *models.Profile) bool { return p.YoungerBrothers != nil },
	"youngerSisters":         func(p *models.Profile) bool { return p.YoungerSisters != nil },
	"elderBrothers":          func(p *models.Profile) bool { return p.ElderBrothers != nil },
	"elderSisters":           func(p *models.Profile) bool { return p.ElderSisters != nil },
	"youngerBrothersMarried": func(p *models.Profile) bool { return p.YoungerBrothersMarried != nil },
	"youngerSistersMarried":  func(p *models.Profile) bool { return p.YoungerSistersMarried != nil },
	"elderBrothersMarried":   func(p *models.Profile) bool { return p.ElderBrothersMarried != nil },
	"elderSistersMarried":    func(p *models.Profile) bool { return p.ElderSistersMarried != nil },
	"areYouSaved":            func(p *models.Profile) bool { return filled(p.AreYouSaved) },
	"areYouBaptized":         func(p *models.Profile) bool { return filled(p.AreYouBaptized) },
	"areYouAnointed":         func(p *models.Profile) bool { return filled(p.AreYouAnointed) },
	"churchName":             func(p *models.Profile) bool { return filled(p.ChurchName) },
	"denomination":           func(p *models.Profile) bool { return filled(p.Denomination) },
	"pastorName":             func(p *models.Profile) bool { return filled(p.PastorName) },
	"pastorMobileNumber":     func(p *models.Profile) bool { return filled(p.PastorMobileNumber) },
	"churchAddress":          func(p *models.Profile) bool { return p.ChurchAddress.Filled() },
	"exMinAge":               func(p *models.Profile) bool { return p.ExMinAge != nil },
	"exMaxAge":               func(p *models.Profile) bool { return p.ExMaxAge != nil },
	"exEducation":            func(p *models.Profile) bool { return filled(p.ExEducation) },
	"exJobType":              func(p *models.Profile) bool { return filled(p.ExJobType) },
	"exIncome":               func(p *models.Profile) bool { return filled(p.ExIncome) },
	"exComplexion":           func(p *models.Profile) bool { return filled(p.ExComplexion) },
	"exOtherDetails":         func(p *models.Profile) bool { return filled(p.ExOtherDetails) },
}

// HasValue reports whether a stored profile field is filled
func HasValue(p *models.Profile, field string) bool {
	if p == nil {
		return false
	}
	check, ok := presence[field]
	return ok && check(p)
}

func filled(s *string) bool {
	return s != nil && *s != ""
}

// textFields maps the free-text fields that can carry a pending value
var textFields = map[string]func(p *models.Profile) **string{
	"name":           func(p *models.Profile) **string { return &p.Name },
	"about":          func(p *models.Profile) **string { return &p.About },
	"jobTitle":       func(p *models.Profile) **string { return &p.JobTitle },
	"fatherName":     func(p *models.Profile) **string { return &p.FatherName },
	"motherName":     func(p *models.Profile) **string { return &p.MotherName },
	"churchName":     func(p *models.Profile) **string { return &p.ChurchName },
	"pastorName":     func(p *models.Profile) **string { return &p.PastorName },
	"exOtherDetails": func(p *models.Profile) **string { return &p.ExOtherDetails },
}

// SensitiveFields are the free-text fields that go through moderation when it is enabled
var SensitiveFields = []string{
	"name", "about", "jobTitle", "fatherName", "motherName", "churchName", "pastorName", "exOtherDetails",
}

// FieldClassifier decides which fields are routed through the pending-approval overlay
type FieldClassifier interface {
	RequiresModeration(field string) bool
}

type sensitiveClassifier struct{}

func (sensitiveClassifier) RequiresModeration(field string) bool {
	return slices.Contains(SensitiveFields, field)
}

type directClassifier struct{}

func (directClassifier) RequiresModeration(string) bool { return false }

// NewClassifier returns the overlay classifier when moderation is enabled,
// and a classifier that writes everything directly otherwise.
func NewClassifier(moderationEnabled bool) FieldClassifier {
	if moderationEnabled {
		return sensitiveClassifier{}
	}
	return directClassifier{}
}

// Text returns the value of a moderated text field
func Text(p *models.Profile, field string) (string, error) {
	ref, ok := textFields[field]
	if !ok {
		return "", fmt.Errorf("field %q is not a moderated text field", field)
	}
	if v := *ref(p); v != nil {
		return *v, nil
	}
	return "", nil
}

// SetText writes a moderated text field; an empty value clears it
func SetText(p *models.Profile, field, value string) error {
	ref, ok := textFields[field]
	if !ok {
		return fmt.Errorf("field %q is not a moderated text field", field)
	}
	*ref(p) = optional(value)
	return nil
}

// MergePending returns a copy of the profile with unapproved pending values
// laid over the committed ones. Only the owner should ever see this view.
func MergePending(p *models.Profile, pending []*models.PendingFieldUpdate) *models.Profile {
	if p == nil {
		return nil
	}
	merged := *p
	for _, u := range pending {
		if u.Approved || u.UserID != p.UserID {
			continue
		}
		_ = SetText(&merged, u.Field, u.Value)
	}
	return &merged
}
