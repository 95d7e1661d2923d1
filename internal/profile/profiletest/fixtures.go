// Package profiletest provides valid section payloads and encoded images for tests.
package profiletest

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"

	"matrimony-backend/internal/models"
	"matrimony-backend/internal/profile"
)

// Personal returns a complete, valid personal section
func Personal() *profile.PersonalDetails {
	return &profile.PersonalDetails{
		ProfileCreatedFor: "Son",
		Name:              "John Samuel",
		About:             "Software engineer who loves music",
		Gender:            "Male",
		DateOfBirth:       "1994-03-12",
		MartialStatus:     "Single",
		Education:         "Post Graduate",
		JobType:           "Private Service",
		JobTitle:          "Engineer",
		Income:            "10L-15L",
		Height:            "5ft 9in",
		Weight:            "70-75kg",
		Complexion:        "Wheatish",
		MobileNumber:      "+91 98400 12345",
		CurrentAddress: &models.Address{
			Street:  "12 Church Road",
			City:    "Chennai",
			State:   "Tamil Nadu",
			Pincode: "600001",
		},
		NativePlace:  "Nagercoil",
		MotherTongue: "Tamil",
	}
}

// Family returns a complete, valid family section
func Family() *profile.FamilyDetails {
	return &profile.FamilyDetails{
		FatherName:             "Samuel Raj",
		FatherOccupation:       "Government Service",
		MotherName:             "Mary Raj",
		MotherOccupation:       "Home Maker",
		FamilyType:             "Nuclear",
		YoungerBrothers:        profile.NewNumber(1),
		YoungerSisters:         profile.NewNumber(0),
		ElderBrothers:          profile.NewNumber(0),
		ElderSisters:           profile.NewNumber(2),
		YoungerBrothersMarried: profile.NewNumber(0),
		YoungerSistersMarried:  profile.NewNumber(0),
		ElderBrothersMarried:   profile.NewNumber(0),
		ElderSistersMarried:    profile.NewNumber(1),
	}
}

// Spiritual returns a complete, valid spiritual section
func Spiritual() *profile.SpiritualDetails {
	return &profile.SpiritualDetails{
		AreYouSaved:        "Yes",
		AreYouBaptized:     "Yes",
		AreYouAnointed:     "No",
		ChurchName:         "Grace Assembly",
		Denomination:       "Pentecostal",
		PastorName:         "Pr. David",
		PastorMobileNumber: "+91 98400 54321",
		ChurchAddress: &models.Address{
			Street:  "4 Hill Street",
			City:    "Chennai",
			State:   "Tamil Nadu",
			Pincode: "600002",
		},
	}
}

// Preferences returns a complete, valid preferences section
func Preferences() *profile.PartnerPreferences {
	return &profile.PartnerPreferences{
		ExMinAge:       profile.NewNumber(24),
		ExMaxAge:       profile.NewNumber(30),
		ExEducation:    "Under Graduate",
		ExJobType:      "Any",
		ExIncome:       "Any",
		ExComplexion:   "Any",
		ExOtherDetails: "God fearing",
	}
}

// Gallery returns a valid gallery of n PNG photos with distinct sizes
func Gallery(n int) *profile.PhotoGallery {
	g := &profile.PhotoGallery{}
	for i := 0; i < n; i++ {
		w, h := 4+i, 3+i
		g.Gallery = append(g.Gallery, profile.PhotoInput{
			Data:       PNGDataURL(w, h),
			Dimensions: profile.Dimensions{Width: profile.NewNumber(w), Height: profile.NewNumber(h)},
		})
	}
	return g
}

// All returns one valid payload per form section, in canonical order (payment excluded)
func All() []profile.Payload {
	return []profile.Payload{Personal(), Family(), Spiritual(), Preferences(), Gallery(1)}
}

// PNGDataURL encodes a w x h PNG as a data URL
func PNGDataURL(w, h int) string {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// Filled returns a profile with every section applied and the given photo count
func Filled(photos int) *models.Profile {
	p := &models.Profile{ID: "profile-1", UserID: "user-1"}
	Personal().ApplyTo(p)
	Family().ApplyTo(p)
	Spiritual().ApplyTo(p)
	Preferences().ApplyTo(p)
	for i := 0; i < photos; i++ {
		p.Photos = append(p.Photos, &models.Photo{ID: "photo", ProfileID: p.ID, Width: 4, Height: 3, IsPrimary: i == 0, Order: i})
	}
	return p
}
