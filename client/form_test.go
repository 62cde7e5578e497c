package client

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy-arrow/vocal-excellence-backend/validation"
)

func validFormData() validation.ApplicationData {
	return validation.ApplicationData{
		FirstName:          "Ana",
		LastName:           "Ko",
		Email:              "ana.ko@example.com",
		Phone:              "+372 5123 4567",
		DateOfBirth:        "1998-04-12",
		Nationality:        "Estonian",
		City:               "Tallinn",
		Country:            "Estonia",
		VocalRange:         "soprano",
		YearsSinging:       "8",
		MusicalBackground:  strings.Repeat("Conservatory training and choir experience. ", 3),
		ReasonForApplying:  strings.Repeat("I want to develop my technique with world-class coaches. ", 3),
		HeardAboutUs:       "instagram",
		DietaryRestriction: "none",
		TermsAgreed:        true,
	}
}

func TestFormStepsAdvanceOnlyWhenValid(t *testing.T) {
	f := NewForm()
	require.Equal(t, StepPersonalInfo, f.Step())

	// Empty form: first step cannot advance.
	assert.False(t, f.Next())
	assert.Equal(t, StepPersonalInfo, f.Step())
	errs := f.FieldErrors()
	assert.Contains(t, errs, "firstName")
	assert.Contains(t, errs, "email")
	// Later steps' fields are not reported yet.
	assert.NotContains(t, errs, "vocalRange")
	assert.NotContains(t, errs, "termsAgreed")

	f.Data = validFormData()
	for _, want := range []Step{StepMusicalBackground, StepProgramme, StepMaterials, StepTerms} {
		require.True(t, f.Next())
		assert.Equal(t, want, f.Step())
		assert.Empty(t, f.FieldErrors())
	}
}

func TestFormStepGateReportsJSONFieldNames(t *testing.T) {
	f := NewForm()
	f.Data = validFormData()
	f.Data.VocalRange = "whistle"

	require.True(t, f.Next()) // personal info is fine
	assert.False(t, f.Next()) // musical background is not
	assert.Equal(t, StepMusicalBackground, f.Step())

	errs := f.FieldErrors()
	require.Contains(t, errs, "vocalRange")
	assert.NotContains(t, errs, "VocalRange")
}

func TestFormTermsStepRequiresAgreement(t *testing.T) {
	f := NewForm()
	f.Data = validFormData()
	f.Data.TermsAgreed = false

	for f.Step() < StepTerms {
		require.True(t, f.Next())
	}
	assert.False(t, f.Next())
	assert.Equal(t, "must be accepted", f.FieldErrors()["termsAgreed"])

	f.Data.TermsAgreed = true
	assert.True(t, f.Next())
	assert.Equal(t, StepTerms, f.Step()) // last step, stays put
}

func TestFormMaterialsStepHasNoGate(t *testing.T) {
	f := NewForm() // completely empty data
	f.step = StepMaterials
	assert.True(t, f.Next())
	assert.Equal(t, StepTerms, f.Step())
}

func TestFormBackStopsAtFirstStep(t *testing.T) {
	f := NewForm()
	f.Data = validFormData()
	require.True(t, f.Next())
	f.Back()
	assert.Equal(t, StepPersonalInfo, f.Step())
	f.Back()
	assert.Equal(t, StepPersonalInfo, f.Step())
}

func TestFormComplete(t *testing.T) {
	f := NewForm()
	assert.False(t, f.Complete())
	f.Data = validFormData()
	assert.True(t, f.Complete())
}
