package score

// Criterion documents one scoring rule for users.
type Criterion struct {
	Name        string  `json:"criterion" yaml:"criterion"`
	Description string  `json:"description" yaml:"description"`
	Scoring     string  `json:"scoring" yaml:"scoring"`
	Weight      float64 `json:"weight" yaml:"weight"`
}

// Criteria returns the criteria guide mirroring the scoring rules.
func Criteria() []Criterion {
	return []Criterion{
		{
			Name:        "IUCN Status",
			Description: "Conservation status of the species",
			Scoring:     "CR=5, EN=4, VU=3, NT=2, LC=1 (×3)",
			Weight:      iucnWeight,
		},
		{
			Name:        "Endemism",
			Description: "Whether the species is endemic to the region",
			Scoring:     "Yes=2, No=1 (×2)",
			Weight:      endemismWeight,
		},
		{
			Name:        "Threat Level",
			Description: "Intensity of threats faced (scale 1–5)",
			Scoring:     "Score 1–5 (×3)",
			Weight:      threatWeight,
		},
		{
			Name:        "Altitudinal Range",
			Description: "Altitude where species occurs",
			Scoring:     "<500=4, 501-1000=3, 1001-1500=2, >1500=1 (×1)",
			Weight:      altitudeWeight,
		},
		{
			Name:        "Exploitation",
			Description: "Level of exploitation or use",
			Scoring:     "Not=1, Local=2, Commercial=3 (×2)",
			Weight:      exploitationWeight,
		},
		{
			Name:        "Habitat Specificity",
			Description: "Number of habitats the species occupies",
			Scoring:     "1=4, 2=3, 3=2, >3=1 (×1.5)",
			Weight:      habitatWeight,
		},
		{
			Name:        "Use Value",
			Description: "Number of uses by people",
			Scoring:     "0=1, 1=2, 2=3, 3=4, >3=5 (×1.5)",
			Weight:      useWeight,
		},
	}
}

// SampleRecords returns the example records offered as a template upload.
func SampleRecords() []*Record {
	return []*Record{
		{
			SpeciesName:        "Species A",
			IUCNStatus:         IUCNEndangered,
			Endemism:           EndemicYes,
			ThreatLevel:        3,
			AltitudinalRange:   Altitude501To1000,
			Exploitation:       ExploitationLocal,
			HabitatSpecificity: 2,
			UseValue:           2,
		},
		{
			SpeciesName:        "Species B",
			IUCNStatus:         IUCNVulnerable,
			Endemism:           EndemicNo,
			ThreatLevel:        2,
			AltitudinalRange:   Altitude1001To1500,
			Exploitation:       ExploitationNone,
			HabitatSpecificity: 1,
			UseValue:           1,
		},
	}
}
