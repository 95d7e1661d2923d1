package profile

import (
	"time"

	"matrimony-backend/internal/models"
)

// Hydrate builds the editable values of one section from the stored profile.
// Nulls become "" or 0 and missing addresses become empty addresses, so every
// section is loaded into the form the same way.
func Hydrate(s Section, p *models.Profile) (Payload, error) {
	if _, err := Lookup(s); err != nil {
		return nil, err
	}
	if p == nil {
		p = &models.Profile{}
	}
	switch s {
	case SectionPersonal:
		return &PersonalDetails{
			ProfileCreatedFor: str(p.ProfileCreatedFor),
			Name:              str(p.Name),
			About:             str(p.About),
			Gender:            str(p.Gender),
			DateOfBirth:       date(p.DateOfBirth),
			MartialStatus:     str(p.MartialStatus),
			Education:         str(p.Education),
			JobType:           str(p.JobType),
			JobTitle:          str(p.JobTitle),
			Income:            str(p.Income),
			Height:            str(p.Height),
			Weight:            str(p.Weight),
			Complexion:        str(p.Complexion),
			MobileNumber:      str(p.MobileNumber),
			CurrentAddress:    addr(p.CurrentAddress),
			NativePlace:       str(p.NativePlace),
			MotherTongue:      str(p.MotherTongue),
		}, nil
	case SectionFamily:
		return &FamilyDetails{
			FatherName:             str(p.FatherName),
			FatherOccupation:       str(p.FatherOccupation),
			MotherName:             str(p.MotherName),
			MotherOccupation:       str(p.MotherOccupation),
			FamilyType:             str(p.FamilyType),
			YoungerBrothers:        num(p.YoungerBrothers),
			YoungerSisters:         num(p.YoungerSisters),
			ElderBrothers:          num(p.ElderBrothers),
			ElderSisters:           num(p.ElderSisters),
			YoungerBrothersMarried: num(p.YoungerBrothersMarried),
			YoungerSistersMarried:  num(p.YoungerSistersMarried),
			ElderBrothersMarried:   num(p.ElderBrothersMarried),
			ElderSistersMarried:    num(p.ElderSistersMarried),
		}, nil
	case SectionSpiritual:
		return &SpiritualDetails{
			AreYouSaved:        str(p.AreYouSaved),
			AreYouBaptized:     str(p.AreYouBaptized),
			AreYouAnointed:     str(p.AreYouAnointed),
			ChurchName:         str(p.ChurchName),
			Denomination:       str(p.Denomination),
			PastorName:         str(p.PastorName),
			PastorMobileNumber: str(p.PastorMobileNumber),
			ChurchAddress:      addr(p.ChurchAddress),
		}, nil
	case SectionPreferences:
		return &PartnerPreferences{
			ExMinAge:       num(p.ExMinAge),
			ExMaxAge:       num(p.ExMaxAge),
			ExEducation:    str(p.ExEducation),
			ExJobType:      str(p.ExJobType),
			ExIncome:       str(p.ExIncome),
			ExComplexion:   str(p.ExComplexion),
			ExOtherDetails: str(p.ExOtherDetails),
		}, nil
	case SectionImages:
		g := &PhotoGallery{Gallery: []PhotoInput{}, ProfilePictureIndex: NewNumber(0)}
		for i, photo := range p.Photos {
			g.Gallery = append(g.Gallery, PhotoInput{
				ID:         photo.ID,
				Data:       photo.Data,
				URL:        photo.URL,
				Dimensions: Dimensions{Width: NewNumber(photo.Width), Height: NewNumber(photo.Height)},
			})
			if photo.IsPrimary {
				g.ProfilePictureIndex = NewNumber(i)
			}
		}
		return g, nil
	}
	return &PaymentDetails{}, nil
}

// IsEmpty reports whether none of the section's fields hold a value
func IsEmpty(s Section, p *models.Profile) bool {
	if p == nil {
		return true
	}
	if s == SectionImages {
		return len(p.Photos) == 0
	}
	def, err := Lookup(s)
	if err != nil {
		return true
	}
	for _, field := range def.Fields {
		if HasValue(p, field) {
			return false
		}
	}
	return true
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func num(n *int) Number {
	if n == nil {
		return NewNumber(0)
	}
	return NewNumber(*n)
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func addr(a *models.Address) *models.Address {
	if a == nil {
		return &models.Address{}
	}
	out := *a
	return &out
}
