package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"matrimony-backend/internal/models"
)

// ErrMalformedPayload is returned when a section body is not a JSON object of the expected shape
var ErrMalformedPayload = errors.New("malformed section payload")

// Payload is the decoded body of one section submission.
// Exactly one concrete type exists per section.
type Payload interface {
	Section() Section
	// ApplyTo writes the section's own fields onto the profile
	ApplyTo(p *models.Profile)
}

// Number is an optional integer form value. It accepts JSON numbers and
// numeric strings; empty strings and null leave it unset.
type Number struct {
	Value   int
	Set     bool
	Invalid bool
}

// NewNumber returns a set Number
func NewNumber(v int) Number {
	return Number{Value: v, Set: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v != float64(int(v)) {
		n.Invalid = true
		return nil
	}
	n.Value, n.Set = int(v), true
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(n.Value)), nil
}

func (n Number) ptr() *int {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

// PersonalDetails is the payload of the personal section
type PersonalDetails struct {
	ProfileCreatedFor string          `json:"profileCreatedFor"`
	Name              string          `json:"name"`
	About             string          `json:"about"`
	Gender            string          `json:"gender"`
	DateOfBirth       string          `json:"dateOfBirth"`
	MartialStatus     string          `json:"martialStatus"`
	Education         string          `json:"education"`
	JobType           string          `json:"jobType"`
	JobTitle          string          `json:"jobTitle"`
	Income            string          `json:"income"`
	Height            string          `json:"height"`
	Weight            string          `json:"weight"`
	Complexion        string          `json:"complexion"`
	MobileNumber      string          `json:"mobileNumber"`
	CurrentAddress    *models.Address `json:"currentAddress"`
	NativePlace       string          `json:"nativePlace"`
	MotherTongue      string          `json:"motherTongue"`
}

func (*PersonalDetails) Section() Section { return SectionPersonal }

func (d *PersonalDetails) ApplyTo(p *models.Profile) {
	p.ProfileCreatedFor = optional(d.ProfileCreatedFor)
	p.Name = optional(d.Name)
	p.About = optional(d.About)
	p.Gender = optional(d.Gender)
	p.DateOfBirth = nil
	if dob, err := ParseDate(d.DateOfBirth); err == nil {
		p.DateOfBirth = &dob
	}
	p.MartialStatus = optional(d.MartialStatus)
	p.Education = optional(d.Education)
	p.JobType = optional(d.JobType)
	p.JobTitle = optional(d.JobTitle)
	p.Income = optional(d.Income)
	p.Height = optional(d.Height)
	p.Weight = optional(d.Weight)
	p.Complexion = optional(d.Complexion)
	p.MobileNumber = optional(d.MobileNumber)
	p.CurrentAddress = address(d.CurrentAddress)
	p.NativePlace = optional(d.NativePlace)
	p.MotherTongue = optional(d.MotherTongue)
}

// FamilyDetails is the payload of the family section
type FamilyDetails struct {
	FatherName             string `json:"fatherName"`
	FatherOccupation       string `json:"fatherOccupation"`
	MotherName             string `json:"motherName"`
	MotherOccupation       string `json:"motherOccupation"`
	FamilyType             string `json:"familyType"`
	YoungerBrothers        Number `json:"youngerBrothers"`
	YoungerSisters         Number `json:"youngerSisters"`
	ElderBrothers          Number `json:"elderBrothers"`
	ElderSisters           Number `json:"elderSisters"`
	YoungerBrothersMarried Number `json:"youngerBrothersMarried"`
	YoungerSistersMarried  Number `json:"youngerSistersMarried"`
	ElderBrothersMarried   Number `json:"elderBrothersMarried"`
	ElderSistersMarried    Number `json:"elderSistersMarried"`
}

func (*FamilyDetails) Section() Section { return SectionFamily }

func (d *FamilyDetails) ApplyTo(p *models.Profile) {
	p.FatherName = optional(d.FatherName)
	p.FatherOccupation = optional(d.FatherOccupation)
	p.MotherName = optional(d.MotherName)
	p.MotherOccupation = optional(d.MotherOccupation)
	p.FamilyType = optional(d.FamilyType)
	p.YoungerBrothers = d.YoungerBrothers.ptr()
	p.YoungerSisters = d.YoungerSisters.ptr()
	p.ElderBrothers = d.ElderBrothers.ptr()
	p.ElderSisters = d.ElderSisters.ptr()
	p.YoungerBrothersMarried = d.YoungerBrothersMarried.ptr()
	p.YoungerSistersMarried = d.YoungerSistersMarried.ptr()
	p.ElderBrothersMarried = d.ElderBrothersMarried.ptr()
	p.ElderSistersMarried = d.ElderSistersMarried.ptr()
}

// SpiritualDetails is the payload of the spiritual section
type SpiritualDetails struct {
	AreYouSaved        string          `json:"areYouSaved"`
	AreYouBaptized     string          `json:"areYouBaptized"`
	AreYouAnointed     string          `json:"areYouAnointed"`
	ChurchName         string          `json:"churchName"`
	Denomination       string          `json:"denomination"`
	PastorName         string          `json:"pastorName"`
	PastorMobileNumber string          `json:"pastorMobileNumber"`
	ChurchAddress      *models.Address `json:"churchAddress"`
}

func (*SpiritualDetails) Section() Section { return SectionSpiritual }

func (d *SpiritualDetails) ApplyTo(p *models.Profile) {
	p.AreYouSaved = optional(d.AreYouSaved)
	p.AreYouBaptized = optional(d.AreYouBaptized)
	p.AreYouAnointed = optional(d.AreYouAnointed)
	p.ChurchName = optional(d.ChurchName)
	p.Denomination = optional(d.Denomination)
	p.PastorName = optional(d.PastorName)
	p.PastorMobileNumber = optional(d.PastorMobileNumber)
	p.ChurchAddress = address(d.ChurchAddress)
}

// PartnerPreferences is the payload of the preferences section
type PartnerPreferences struct {
	ExMinAge       Number `json:"exMinAge"`
	ExMaxAge       Number `json:"exMaxAge"`
	ExEducation    string `json:"exEducation"`
	ExJobType      string `json:"exJobType"`
	ExIncome       string `json:"exIncome"`
	ExComplexion   string `json:"exComplexion"`
	ExOtherDetails string `json:"exOtherDetails"`
}

func (*PartnerPreferences) Section() Section { return SectionPreferences }

func (d *PartnerPreferences) ApplyTo(p *models.Profile) {
	p.ExMinAge = d.ExMinAge.ptr()
	p.ExMaxAge = d.ExMaxAge.ptr()
	p.ExEducation = optional(d.ExEducation)
	p.ExJobType = optional(d.ExJobType)
	p.ExIncome = optional(d.ExIncome)
	p.ExComplexion = optional(d.ExComplexion)
	p.ExOtherDetails = optional(d.ExOtherDetails)
}

// Dimensions are the pixel dimensions declared for an uploaded photo
type Dimensions struct {
	Width  Number `json:"width"`
	Height Number `json:"height"`
}

// PhotoInput is one gallery entry. A photo either carries encoded image
// data or references an already stored photo by ID.
type PhotoInput struct {
	ID         string     `json:"id,omitempty"`
	Data       string     `json:"data"`
	URL        string     `json:"url,omitempty"`
	Dimensions Dimensions `json:"dimensions"`
}

// PhotoGallery is the payload of the images section
type PhotoGallery struct {
	Gallery             []PhotoInput `json:"gallery"`
	ProfilePictureIndex Number       `json:"profilePictureIndex"`
}

func (*PhotoGallery) Section() Section { return SectionImages }

// ApplyTo is a no-op: the gallery is a relation replaced by the gateway.
func (*PhotoGallery) ApplyTo(*models.Profile) {}

// Order returns the indexes of the gallery entries in persisted order: the
// chosen profile picture first, then the others in submission order.
func (g *PhotoGallery) Order() []int {
	primary := g.ProfilePictureIndex.Value
	if !g.ProfilePictureIndex.Set || primary < 0 || primary >= len(g.Gallery) {
		primary = 0
	}
	out := make([]int, 0, len(g.Gallery))
	if len(g.Gallery) > 0 {
		out = append(out, primary)
	}
	for i := range g.Gallery {
		if i != primary {
			out = append(out, i)
		}
	}
	return out
}

// Ordered returns the gallery entries in persisted order
func (g *PhotoGallery) Ordered() []PhotoInput {
	out := make([]PhotoInput, 0, len(g.Gallery))
	for _, i := range g.Order() {
		out = append(out, g.Gallery[i])
	}
	return out
}

// PaymentDetails is the placeholder payload of the payment section
type PaymentDetails struct{}

func (*PaymentDetails) Section() Section { return SectionPayment }

func (*PaymentDetails) ApplyTo(*models.Profile) {}

// NewPayload returns an empty payload value for the section
func NewPayload(section Section) (Payload, error) {
	switch section {
	case SectionPersonal:
		return &PersonalDetails{}, nil
	case SectionFamily:
		return &FamilyDetails{}, nil
	case SectionSpiritual:
		return &SpiritualDetails{}, nil
	case SectionPreferences:
		return &PartnerPreferences{}, nil
	case SectionImages:
		return &PhotoGallery{}, nil
	case SectionPayment:
		return &PaymentDetails{}, nil
	}
	return nil, &UnknownSectionError{Section: string(section)}
}

// Decode turns a raw JSON body into the section's typed payload.
// Fields that belong to other sections are ignored.
func Decode(section Section, raw []byte) (Payload, error) {
	payload, err := NewPayload(section)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return payload, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 timestamps
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func address(a *models.Address) *models.Address {
	if a == nil {
		return nil
	}
	out := models.Address{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		Pincode: strings.TrimSpace(a.Pincode),
	}
	if out == (models.Address{}) {
		return nil
	}
	return &out
}
