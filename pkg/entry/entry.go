// Package entry validates single-species input collected from a form or flags.
package entry

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mchmarny/sprio/pkg/score"
)

const (
	ThreatMin  = 1
	ThreatMax  = 5
	HabitatMin = 1
	HabitatMax = 10
	UseMin     = 0
	UseMax     = 10

	ThreatDefault  = 3
	HabitatDefault = 1
	UseDefault     = 1
)

// Form is one species as entered interactively. Unlike the engine, which
// accepts anything, the form only allows the enumerated vocabularies.
type Form struct {
	SpeciesName        string `form:"species_name" validate:"required,max=200"`
	IUCNStatus         string `form:"iucn_status" validate:"required,iucn"`
	Endemism           string `form:"endemism" validate:"required,endemism"`
	ThreatLevel        int    `form:"threat_level" validate:"min=1,max=5"`
	AltitudinalRange   string `form:"altitudinal_range" validate:"required,altitude"`
	Exploitation       string `form:"exploitation" validate:"required,exploitation"`
	HabitatSpecificity int    `form:"habitat_specificity" validate:"min=1,max=10"`
	UseValue           int    `form:"use_value" validate:"min=0,max=10"`
}

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every invalid field of a Form.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid entry: " + strings.Join(parts, "; ")
}

// Validator wraps the go-playground validator with the vocabulary rules.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	mustRegister(v, "iucn", score.IUCNStatuses())
	mustRegister(v, "endemism", score.EndemismValues())
	mustRegister(v, "altitude", score.AltitudinalRanges())
	mustRegister(v, "exploitation", score.ExploitationLevels())
	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, allowed []string) {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return set[fl.Field().String()]
	})
	if err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

// Validate checks f and returns a *ValidationError listing every bad field.
func (val *Validator) Validate(f *Form) error {
	if f == nil {
		return errors.New("entry required")
	}

	err := val.v.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating entry: %w", err)
	}

	ve := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "iucn":
		return "must be one of: " + strings.Join(score.IUCNStatuses(), ", ")
	case "endemism":
		return "must be one of: " + strings.Join(score.EndemismValues(), ", ")
	case "altitude":
		return "must be one of: " + strings.Join(score.AltitudinalRanges(), ", ")
	case "exploitation":
		return "must be one of: " + strings.Join(score.ExploitationLevels(), ", ")
	default:
		return "invalid value"
	}
}

// Record converts a validated form for scoring.
func (f *Form) Record() *score.Record {
	return &score.Record{
		SpeciesName:        strings.TrimSpace(f.SpeciesName),
		IUCNStatus:         f.IUCNStatus,
		Endemism:           f.Endemism,
		ThreatLevel:        float64(f.ThreatLevel),
		AltitudinalRange:   f.AltitudinalRange,
		Exploitation:       f.Exploitation,
		HabitatSpecificity: f.HabitatSpecificity,
		UseValue:           f.UseValue,
	}
}

// FromValues reads a Form from submitted form values. Numeric fields that are
// absent take the form defaults; malformed numbers are validation errors.
func FromValues(v url.Values) (*Form, error) {
	f := &Form{
		SpeciesName:      strings.TrimSpace(v.Get("species_name")),
		IUCNStatus:       strings.TrimSpace(v.Get("iucn_status")),
		Endemism:         strings.TrimSpace(v.Get("endemism")),
		AltitudinalRange: strings.TrimSpace(v.Get("altitudinal_range")),
		Exploitation:     strings.TrimSpace(v.Get("exploitation")),
	}

	ve := &ValidationError{}
	num := func(name string, def int) int {
		s := strings.TrimSpace(v.Get(name))
		if s == "" {
			return def
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			ve.Fields = append(ve.Fields, FieldError{Field: name, Message: "must be a whole number"})
			return def
		}
		return n
	}
	f.ThreatLevel = num("threat_level", ThreatDefault)
	f.HabitatSpecificity = num("habitat_specificity", HabitatDefault)
	f.UseValue = num("use_value", UseDefault)

	if len(ve.Fields) > 0 {
		return f, ve
	}
	return f, nil
}

// Parse reads, validates, and converts submitted form values.
func (val *Validator) Parse(v url.Values) (*score.Record, error) {
	f, err := FromValues(v)
	if err != nil {
		return nil, err
	}
	if err := val.Validate(f); err != nil {
		return nil, err
	}
	return f.Record(), nil
}
