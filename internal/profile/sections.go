// Package profile holds the profile-completion core: the section registry,
// typed section payloads, validation, completion tracking and next-section
// resolution. It performs no I/O and is shared by the server and the form client.
package profile

import (
	"fmt"
	"slices"

	"matrimony-backend/internal/models"
)

// Section identifies one step of the profile form
type Section string

const (
	SectionPersonal    Section = "personal"
	SectionFamily      Section = "family"
	SectionSpiritual   Section = "spiritual"
	SectionPreferences Section = "preferences"
	SectionImages      Section = "images"
	SectionPayment     Section = "payment"
)

// Order is the canonical section order. The resolver and the navigation gate depend on it.
var Order = []Section{
	SectionPersonal,
	SectionFamily,
	SectionSpiritual,
	SectionPreferences,
	SectionImages,
	SectionPayment,
}

// UnknownSectionError is returned for identifiers outside Order
type UnknownSectionError struct {
	Section string
}

func (e *UnknownSectionError) Error() string {
	return fmt.Sprintf("unknown profile section %q", e.Section)
}

// Definition describes a section: its title, owned fields and rules
type Definition struct {
	ID     Section
	Title  string
	Fields []string
	Rules  []Rule
}

// RequiredFields returns the section's fields that must be filled for it to be complete
func (d *Definition) RequiredFields() []string {
	var out []string
	for _, r := range d.Rules {
		if r.Required() && !slices.Contains(out, r.Field()) {
			out = append(out, r.Field())
		}
	}
	return out
}

// Index returns the position of the section in Order, or -1
func (s Section) Index() int {
	return slices.Index(Order, s)
}

// Next returns the section immediately after s in Order
func (s Section) Next() (Section, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(Order) {
		return "", false
	}
	return Order[i+1], true
}

// ParseSection validates a raw identifier
func ParseSection(raw string) (Section, error) {
	s := Section(raw)
	if s.Index() < 0 {
		return "", &UnknownSectionError{Section: raw}
	}
	return s, nil
}

// Lookup returns the registry entry for a section
func Lookup(s Section) (*Definition, error) {
	def, ok := registry[s]
	if !ok {
		return nil, &UnknownSectionError{Section: string(s)}
	}
	return def, nil
}

var registry = map[Section]*Definition{
	SectionPersonal: {
		ID:    SectionPersonal,
		Title: "Primary Details",
		Fields: []string{
			"profileCreatedFor", "name", "about", "gender", "dateOfBirth",
			"martialStatus", "education", "jobType", "jobTitle", "income",
			"height", "weight", "complexion", "mobileNumber", "currentAddress",
			"nativePlace", "motherTongue",
		},
		Rules: []Rule{
			choice("profileCreatedFor", "Profile Created For is required", "Invalid selection",
				func(d *PersonalDetails) string { return d.ProfileCreatedFor }),
			freeText("name", "Name is required", func(d *PersonalDetails) string { return d.Name }),
			freeText("about", "", func(d *PersonalDetails) string { return d.About }),
			choice("gender", "Gender is required", "Invalid gender",
				func(d *PersonalDetails) string { return d.Gender }),
			dateRule[*PersonalDetails]{field: "dateOfBirth", required: "Date of Birth is required",
				get: func(d *PersonalDetails) string { return d.DateOfBirth }},
			choice("martialStatus", "Martial Status is required", "Invalid martial status",
				func(d *PersonalDetails) string { return d.MartialStatus }),
			choice("education", "Education is required", "Invalid education",
				func(d *PersonalDetails) string { return d.Education }),
			choice("jobType", "Job Type is required", "Invalid job type",
				func(d *PersonalDetails) string { return d.JobType }),
			freeText("jobTitle", "Job Title is required", func(d *PersonalDetails) string { return d.JobTitle }),
			choice("income", "Income is required", "Invalid income",
				func(d *PersonalDetails) string { return d.Income }),
			choice("height", "Height is required", "Invalid height",
				func(d *PersonalDetails) string { return d.Height }),
			choice("weight", "Weight is required", "Invalid weight",
				func(d *PersonalDetails) string { return d.Weight }),
			choice("complexion", "Complexion is required", "Invalid complexion",
				func(d *PersonalDetails) string { return d.Complexion }),
			freeText("mobileNumber", "Mobile Number is required", func(d *PersonalDetails) string { return d.MobileNumber }),
			addressRule[*PersonalDetails]{field: "currentAddress", states: Options["state"],
				get: func(d *PersonalDetails) *models.Address { return d.CurrentAddress }},
			freeText("nativePlace", "Native Place is required", func(d *PersonalDetails) string { return d.NativePlace }),
			choice("motherTongue", "Mother Tongue is required", "Invalid mother tongue",
				func(d *PersonalDetails) string { return d.MotherTongue }),
		},
	},
	SectionFamily: {
		ID:    SectionFamily,
		Title: "Family Details",
		Fields: []string{
			"fatherName", "fatherOccupation", "motherName", "motherOccupation", "familyType",
			"youngerBrothers", "youngerSisters", "elderBrothers", "elderSisters",
			"youngerBrothersMarried", "youngerSistersMarried", "elderBrothersMarried", "elderSistersMarried",
		},
		Rules: []Rule{
			freeText("fatherName", "Father's Name is required", func(d *FamilyDetails) string { return d.FatherName }),
			choice("fatherOccupation", "Father's Occupation is required", "Invalid father occupation",
				func(d *FamilyDetails) string { return d.FatherOccupation }),
			freeText("motherName", "Mother's Name is required", func(d *FamilyDetails) string { return d.MotherName }),
			choice("motherOccupation", "Mother's Occupation is required", "Invalid mother occupation",
				func(d *FamilyDetails) string { return d.MotherOccupation }),
			choice("familyType", "Family Type is required", "Invalid family type",
				func(d *FamilyDetails) string { return d.FamilyType }),
			count("youngerBrothers", func(d *FamilyDetails) Number { return d.YoungerBrothers }),
			count("youngerSisters", func(d *FamilyDetails) Number { return d.YoungerSisters }),
			count("elderBrothers", func(d *FamilyDetails) Number { return d.ElderBrothers }),
			count("elderSisters", func(d *FamilyDetails) Number { return d.ElderSisters }),
			count("youngerBrothersMarried", func(d *FamilyDetails) Number { return d.YoungerBrothersMarried }),
			count("youngerSistersMarried", func(d *FamilyDetails) Number { return d.YoungerSistersMarried }),
			count("elderBrothersMarried", func(d *FamilyDetails) Number { return d.ElderBrothersMarried }),
			count("elderSistersMarried", func(d *FamilyDetails) Number { return d.ElderSistersMarried }),
			notAbove[*FamilyDetails]{field: "youngerBrothersMarried", message: "Cannot exceed number of younger brothers",
				get: func(d *FamilyDetails) (Number, Number) { return d.YoungerBrothersMarried, d.YoungerBrothers }},
			notAbove[*FamilyDetails]{field: "youngerSistersMarried", message: "Cannot exceed number of younger sisters",
				get: func(d *FamilyDetails) (Number, Number) { return d.YoungerSistersMarried, d.YoungerSisters }},
			notAbove[*FamilyDetails]{field: "elderBrothersMarried", message: "Cannot exceed number of elder brothers",
				get: func(d *FamilyDetails) (Number, Number) { return d.ElderBrothersMarried, d.ElderBrothers }},
			notAbove[*FamilyDetails]{field: "elderSistersMarried", message: "Cannot exceed number of elder sisters",
				get: func(d *FamilyDetails) (Number, Number) { return d.ElderSistersMarried, d.ElderSisters }},
		},
	},
	SectionSpiritual: {
		ID:    SectionSpiritual,
		Title: "Spiritual Details",
		Fields: []string{
			"areYouSaved", "areYouBaptized", "areYouAnointed", "churchName",
			"denomination", "pastorName", "pastorMobileNumber", "churchAddress",
		},
		Rules: []Rule{
			choice("areYouSaved", "This field is required", "Invalid are you saved",
				func(d *SpiritualDetails) string { return d.AreYouSaved }),
			choice("areYouBaptized", "This field is required", "Invalid are you baptized",
				func(d *SpiritualDetails) string { return d.AreYouBaptized }),
			choice("areYouAnointed", "This field is required", "Invalid are you anointed",
				func(d *SpiritualDetails) string { return d.AreYouAnointed }),
			freeText("churchName", "Church Name is required", func(d *SpiritualDetails) string { return d.ChurchName }),
			choice("denomination", "Denomination is required", "Invalid denomination",
				func(d *SpiritualDetails) string { return d.Denomination }),
			freeText("pastorName", "Pastor Name is required", func(d *SpiritualDetails) string { return d.PastorName }),
			freeText("pastorMobileNumber", "Pastor Mobile Number is required",
				func(d *SpiritualDetails) string { return d.PastorMobileNumber }),
			addressRule[*SpiritualDetails]{field: "churchAddress",
				get: func(d *SpiritualDetails) *models.Address { return d.ChurchAddress }},
		},
	},
	SectionPreferences: {
		ID:    SectionPreferences,
		Title: "Partner Preferences",
		Fields: []string{
			"exMinAge", "exMaxAge", "exEducation", "exJobType", "exIncome", "exComplexion", "exOtherDetails",
		},
		Rules: []Rule{
			numberRule[*PartnerPreferences]{field: "exMinAge", required: "Minimum Age is required",
				min: 18, minMsg: "Minimum Age must be at least 18",
				max: maxAge, maxMsg: "Minimum Age must be at most 100",
				get: func(d *PartnerPreferences) Number { return d.ExMinAge }},
			numberRule[*PartnerPreferences]{field: "exMaxAge", required: "Maximum Age is required",
				min: 18, minMsg: "Maximum Age must be at least 18",
				max: maxAge, maxMsg: "Maximum Age must be at most 100",
				get: func(d *PartnerPreferences) Number { return d.ExMaxAge }},
			atLeast[*PartnerPreferences]{field: "exMaxAge", message: "Maximum Age cannot be less than Minimum Age",
				get: func(d *PartnerPreferences) (Number, Number) { return d.ExMaxAge, d.ExMinAge }},
			freeText("exEducation", "Education is required", func(d *PartnerPreferences) string { return d.ExEducation }),
			choice("exJobType", "Job Type is required", "Invalid job type",
				func(d *PartnerPreferences) string { return d.ExJobType }),
			choice("exIncome", "Income is required", "Invalid income",
				func(d *PartnerPreferences) string { return d.ExIncome }),
			choice("exComplexion", "Complexion is required", "Invalid complexion",
				func(d *PartnerPreferences) string { return d.ExComplexion }),
			freeText("exOtherDetails", "", func(d *PartnerPreferences) string { return d.ExOtherDetails }),
		},
	},
	SectionImages: {
		ID:     SectionImages,
		Title:  "Photos",
		Fields: []string{"gallery", "profilePictureIndex"},
		Rules:  []Rule{galleryRule{}},
	},
	SectionPayment: {
		ID:    SectionPayment,
		Title: "Payment",
	},
}
