package entry

import (
	"errors"
	"net/url"
	"testing"

	"github.com/mchmarny/sprio/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validValues() url.Values {
	return url.Values{
		"species_name":        {"Species A"},
		"iucn_status":         {"Endangered"},
		"endemism":            {"Yes"},
		"threat_level":        {"3"},
		"altitudinal_range":   {"501-1000"},
		"exploitation":        {"Local use"},
		"habitat_specificity": {"2"},
		"use_value":           {"2"},
	}
}

func TestParse_Valid(t *testing.T) {
	r, err := NewValidator().Parse(validValues())
	require.NoError(t, err)
	assert.Equal(t, score.SampleRecords()[0], r)

	s := score.ScoreOne(r)
	assert.Equal(t, 41.0, s.TotalScore)
	assert.Equal(t, score.PriorityCritical, s.Priority)
}

func TestParse_Defaults(t *testing.T) {
	v := validValues()
	v.Del("threat_level")
	v.Del("habitat_specificity")
	v.Del("use_value")

	r, err := NewValidator().Parse(v)
	require.NoError(t, err)
	assert.Equal(t, float64(ThreatDefault), r.ThreatLevel)
	assert.Equal(t, HabitatDefault, r.HabitatSpecificity)
	assert.Equal(t, UseDefault, r.UseValue)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"missing name", "species_name", ""},
		{"unknown status", "iucn_status", "Extinct"},
		{"unknown endemism", "endemism", "Maybe"},
		{"threat too low", "threat_level", "0"},
		{"threat too high", "threat_level", "6"},
		{"unknown altitude", "altitudinal_range", "2000"},
		{"unknown exploitation", "exploitation", "Heavy"},
		{"habitat too low", "habitat_specificity", "0"},
		{"habitat too high", "habitat_specificity", "11"},
		{"use negative", "use_value", "-1"},
		{"use too high", "use_value", "11"},
		{"use not a number", "use_value", "many"},
	}

	val := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validValues()
			v.Set(tt.field, tt.value)

			_, err := val.Parse(v)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			require.Len(t, ve.Fields, 1)
			assert.Equal(t, tt.field, ve.Fields[0].Field)
			assert.NotEmpty(t, ve.Fields[0].Message)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_ReportsAllFields(t *testing.T) {
	err := NewValidator().Validate(&Form{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	fields := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{
		"species_name", "iucn_status", "endemism", "threat_level",
		"altitudinal_range", "exploitation", "habitat_specificity",
	}, fields)
}

func TestValidate_Nil(t *testing.T) {
	assert.Error(t, NewValidator().Validate(nil))
}

func TestValidate_MessageListsVocabulary(t *testing.T) {
	v := validValues()
	v.Set("exploitation", "Heavy")
	_, err := NewValidator().Parse(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Commercial use")
}

func TestForm_RecordTrimsName(t *testing.T) {
	f := &Form{SpeciesName: "  Taxus  ", ThreatLevel: 4}
	r := f.Record()
	assert.Equal(t, "Taxus", r.SpeciesName)
	assert.Equal(t, 4.0, r.ThreatLevel)
}
