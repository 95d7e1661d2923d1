package profile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrimony-backend/internal/models"
	"matrimony-backend/internal/profile"
	"matrimony-backend/internal/profile/profiletest"
)

func TestPercentage_EmptyAndNil(t *testing.T) {
	assert.Equal(t, 0, profile.Percentage(nil))
	assert.Equal(t, 0, profile.Percentage(&models.Profile{}))
}

func TestCompletion_Scenario(t *testing.T) {
	tracker := profile.NewTracker(profile.PaymentExcluded)
	p := &models.Profile{UserID: "user-1"}

	next, ok := tracker.NextIncomplete(p)
	require.True(t, ok)
	assert.Equal(t, profile.SectionPersonal, next)
	assert.Equal(t, 0, tracker.Percentage(p))

	profiletest.Personal().ApplyTo(p)
	next, _ = tracker.NextIncomplete(p)
	assert.Equal(t, profile.SectionFamily, next)
	// 16 of the 36 completion units belong to the personal section
	assert.Equal(t, 44, tracker.Percentage(p))

	profiletest.Family().ApplyTo(p)
	profiletest.Spiritual().ApplyTo(p)
	profiletest.Preferences().ApplyTo(p)
	next, _ = tracker.NextIncomplete(p)
	assert.Equal(t, profile.SectionImages, next)
	assert.Equal(t, 97, tracker.Percentage(p))
	assert.False(t, tracker.IsComplete(p))

	p.Photos = []*models.Photo{{ID: "photo-1", IsPrimary: true}}
	_, ok = tracker.NextIncomplete(p)
	assert.False(t, ok)
	assert.Nil(t, tracker.NextSection(p))
	assert.True(t, tracker.IsComplete(p))
	assert.Equal(t, 100, tracker.Percentage(p))
}

func TestPercentage_MonotonicWhenFillingFields(t *testing.T) {
	p := &models.Profile{}
	full := profiletest.Filled(1)
	steps := []func(){
		func() { p.Name = full.Name },
		func() { p.Gender = full.Gender },
		func() { p.CurrentAddress = full.CurrentAddress },
		func() { p.YoungerBrothers = full.YoungerBrothers },
		func() { p.FatherName = full.FatherName },
		func() { p.ChurchAddress = full.ChurchAddress },
		func() { p.ExMinAge = full.ExMinAge },
		func() { p.Photos = full.Photos },
		func() { p.About = full.About },
	}

	prev := profile.Percentage(p)
	for _, step := range steps {
		step()
		got := profile.Percentage(p)
		assert.GreaterOrEqual(t, got, prev)
		assert.LessOrEqual(t, got, 100)
		prev = got
	}
}

func TestPercentage_Idempotent(t *testing.T) {
	p := &models.Profile{}
	profiletest.Personal().ApplyTo(p)
	first := profile.Percentage(p)
	profiletest.Personal().ApplyTo(p)
	assert.Equal(t, first, profile.Percentage(p))
}

func TestPercentage_PartialAddressDoesNotCount(t *testing.T) {
	p := &models.Profile{CurrentAddress: &models.Address{Street: "1 Main", City: "Chennai"}}
	assert.Equal(t, 0, profile.Percentage(p))
}

func TestIsSectionComplete(t *testing.T) {
	tracker := profile.NewTracker(profile.PaymentExcluded)
	p := profiletest.Filled(0)

	assert.True(t, tracker.IsSectionComplete(profile.SectionPersonal, p))
	assert.True(t, tracker.IsSectionComplete(profile.SectionFamily, p))
	assert.True(t, tracker.IsSectionComplete(profile.SectionSpiritual, p))
	assert.True(t, tracker.IsSectionComplete(profile.SectionPreferences, p))
	assert.False(t, tracker.IsSectionComplete(profile.SectionImages, p))
	assert.False(t, tracker.IsSectionComplete(profile.SectionPayment, p))

	// optional text does not gate completion
	p.About = nil
	p.ExOtherDetails = nil
	assert.True(t, tracker.IsSectionComplete(profile.SectionPersonal, p))
	assert.True(t, tracker.IsSectionComplete(profile.SectionPreferences, p))

	// zero sibling counts are values
	zero := 0
	p.ElderBrothers = &zero
	assert.True(t, tracker.IsSectionComplete(profile.SectionFamily, p))
	p.ElderBrothers = nil
	assert.False(t, tracker.IsSectionComplete(profile.SectionFamily, p))
}

func TestNextIncomplete_ConsistentWithCompleteness(t *testing.T) {
	tracker := profile.NewTracker(profile.PaymentExcluded)
	profiles := []*models.Profile{
		nil,
		{},
		profiletest.Filled(0),
		profiletest.Filled(1),
		profiletest.Filled(5),
	}
	for _, p := range profiles {
		_, pending := tracker.NextIncomplete(p)
		assert.Equal(t, !pending, tracker.IsComplete(p))
		assert.Equal(t, tracker.IsComplete(p), tracker.Percentage(p) == 100)
	}
}

func TestTracker_PaymentRequired(t *testing.T) {
	tracker := profile.NewTracker(profile.PaymentRequired)
	p := profiletest.Filled(1)

	next, ok := tracker.NextIncomplete(p)
	require.True(t, ok)
	assert.Equal(t, profile.SectionPayment, next)
	assert.Equal(t, 100, tracker.Percentage(p))

	paid := time.Now()
	p.PaymentCompletedAt = &paid
	assert.True(t, tracker.IsSectionComplete(profile.SectionPayment, p))
	assert.True(t, tracker.IsComplete(p))
}

func TestTracker_SectionStates(t *testing.T) {
	states := profile.NewTracker("").SectionStates(profiletest.Filled(1))
	require.Len(t, states, len(profile.Order))
	for _, s := range profile.Order[:5] {
		assert.True(t, states[s], s)
	}
	assert.False(t, states[profile.SectionPayment])
}

func TestParsePaymentPolicy(t *testing.T) {
	p, err := profile.ParsePaymentPolicy("")
	require.NoError(t, err)
	assert.Equal(t, profile.PaymentExcluded, p)

	p, err = profile.ParsePaymentPolicy("required")
	require.NoError(t, err)
	assert.Equal(t, profile.PaymentRequired, p)

	_, err = profile.ParsePaymentPolicy("sometimes")
	assert.Error(t, err)
}
