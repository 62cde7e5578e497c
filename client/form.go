// Package client implements the browser form controller as a Go client for
// the intake API: a five-step wizard whose steps are gated by the same
// validation rules the server applies, in-memory file staging, and a
// submitter with bounded retry.
package client

import (
	"github.com/andy-arrow/vocal-excellence-backend/validation"
)

type Step int

const (
	StepPersonalInfo Step = iota
	StepMusicalBackground
	StepProgramme
	StepMaterials
	StepTerms
)

func (s Step) String() string {
	switch s {
	case StepPersonalInfo:
		return "Personal Info"
	case StepMusicalBackground:
		return "Musical Background"
	case StepProgramme:
		return "Programme"
	case StepMaterials:
		return "Materials"
	case StepTerms:
		return "Terms"
	default:
		return "Unknown"
	}
}

// stepFields maps each step to the struct fields it validates. Materials has
// no fields: uploads are staged in the FileStore and all four are optional.
var stepFields = map[Step][]string{
	StepPersonalInfo:      {"FirstName", "LastName", "Email", "Phone", "DateOfBirth", "Nationality", "City", "Country"},
	StepMusicalBackground: {"VocalRange", "YearsSinging", "MusicalBackground"},
	StepProgramme:         {"ReasonForApplying", "HeardAboutUs", "DietaryRestriction", "DietaryDetail"},
	StepMaterials:         nil,
	StepTerms:             {"TermsAgreed"},
}

// Form is the wizard state machine. Continue (Next) validates only the
// current step's fields; on failure the step does not advance and the
// per-field messages are kept for the UI.
type Form struct {
	Data        validation.ApplicationData
	step        Step
	fieldErrors map[string]string
	files       *FileStore
}

func NewForm() *Form {
	return &Form{
		files:       NewFileStore(),
		fieldErrors: map[string]string{},
	}
}

func (f *Form) Step() Step {
	return f.step
}

func (f *Form) Files() *FileStore {
	return f.files
}

// FieldErrors returns the messages from the last failed step validation,
// keyed by JSON field name.
func (f *Form) FieldErrors() map[string]string {
	out := make(map[string]string, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		out[k] = v
	}
	return out
}

// Next validates the current step and advances on success. Returns false,
// leaving the step unchanged, when validation fails.
func (f *Form) Next() bool {
	errs := f.validateStep(f.step)
	if len(errs) > 0 {
		f.fieldErrors = make(map[string]string, len(errs))
		for _, e := range errs {
			f.fieldErrors[e.Field] = e.Message
		}
		return false
	}

	f.fieldErrors = map[string]string{}
	if f.step < StepTerms {
		f.step++
	}
	return true
}

func (f *Form) Back() {
	if f.step > StepPersonalInfo {
		f.step--
	}
}

// Complete reports whether the whole form would pass server-side validation.
func (f *Form) Complete() bool {
	return len(validation.ValidateApplication(&f.Data)) == 0
}

func (f *Form) validateStep(step Step) []validation.FieldError {
	fields := stepFields[step]
	if len(fields) == 0 {
		return nil
	}
	return validation.ValidateApplicationFields(&f.Data, fields...)
}
