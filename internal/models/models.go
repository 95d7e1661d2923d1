package models

import "time"

// User represents a signed-in account, keyed by the identity provider subject
type User struct {
	ID             string     `json:"id"`
	UID            string     `json:"uid"`
	Email          string     `json:"email"`
	Name           *string    `json:"name,omitempty"`
	Picture        *string    `json:"picture,omitempty"`
	EmailVerified  bool       `json:"emailVerified"`
	IsBlocked      bool       `json:"isBlocked"`
	LoginCount     int        `json:"loginCount"`
	LastLoggedInAt *time.Time `json:"lastLoggedInAt,omitempty"`
	PushToken      *string    `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Address is the structured address sub-record used for current and church addresses
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// Filled reports whether all four parts of the address are present
func (a *Address) Filled() bool {
	return a != nil && a.Street != "" && a.City != "" && a.State != "" && a.Pincode != ""
}

// Profile represents the matrimony profile owned by exactly one user.
// Nullable columns are pointers; nil means the field was never filled in.
type Profile struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	ProfileCreatedFor *string    `json:"profileCreatedFor"`
	Name              *string    `json:"name"`
	About             *string    `json:"about"`
	Gender            *string    `json:"gender"`
	DateOfBirth       *time.Time `json:"dateOfBirth"`
	MartialStatus     *string    `json:"martialStatus"`
	Education         *string    `json:"education"`
	JobType           *string    `json:"jobType"`
	JobTitle          *string    `json:"jobTitle"`
	Income            *string    `json:"income"`
	Height            *string    `json:"height"`
	Weight            *string    `json:"weight"`
	Complexion        *string    `json:"complexion"`
	MobileNumber      *string    `json:"mobileNumber"`
	CurrentAddress    *Address   `json:"currentAddress"`
	NativePlace       *string    `json:"nativePlace"`
	MotherTongue      *string    `json:"motherTongue"`

	FatherName             *string `json:"fatherName"`
	FatherOccupation       *string `json:"fatherOccupation"`
	MotherName             *string `json:"motherName"`
	MotherOccupation       *string `json:"motherOccupation"`
	FamilyType             *string `json:"familyType"`
	YoungerBrothers        *int    `json:"youngerBrothers"`
	YoungerSisters         *int    `json:"youngerSisters"`
	ElderBrothers          *int    `json:"elderBrothers"`
	ElderSisters           *int    `json:"elderSisters"`
	YoungerBrothersMarried *int    `json:"youngerBrothersMarried"`
	YoungerSistersMarried  *int    `json:"youngerSistersMarried"`
	ElderBrothersMarried   *int    `json:"elderBrothersMarried"`
	ElderSistersMarried    *int    `json:"elderSistersMarried"`

	AreYouSaved        *string  `json:"areYouSaved"`
	AreYouBaptized     *string  `json:"areYouBaptized"`
	AreYouAnointed     *string  `json:"areYouAnointed"`
	ChurchName         *string  `json:"churchName"`
	Denomination       *string  `json:"denomination"`
	PastorName         *string  `json:"pastorName"`
	PastorMobileNumber *string  `json:"pastorMobileNumber"`
	ChurchAddress      *Address `json:"churchAddress"`

	ExMinAge       *int    `json:"exMinAge"`
	ExMaxAge       *int    `json:"exMaxAge"`
	ExEducation    *string `json:"exEducation"`
	ExJobType      *string `json:"exJobType"`
	ExIncome       *string `json:"exIncome"`
	ExComplexion   *string `json:"exComplexion"`
	ExOtherDetails *string `json:"exOtherDetails"`

	IsReady            bool       `json:"isReady"`
	PaymentCompletedAt *time.Time `json:"paymentCompletedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`

	Photos []*Photo `json:"images"`
}

// Photo is one entry of a profile's photo gallery
type Photo struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profileId"`
	Data      string    `json:"data,omitempty"`
	ObjectKey string    `json:"-"`
	URL       string    `json:"url,omitempty"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	IsPrimary bool      `json:"isPrimary"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

// PendingFieldUpdate is a proposed value for a moderated text field
type PendingFieldUpdate struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Field     string    `json:"field"`
	Value     string    `json:"value"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
