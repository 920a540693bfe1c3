package score

const (
	IUCNCriticallyEndangered = "Critically Endangered"
	IUCNEndangered           = "Endangered"
	IUCNVulnerable           = "Vulnerable"
	IUCNNearThreatened       = "Near Threatened"
	IUCNLeastConcern         = "Least Concern"

	EndemicYes = "Yes"
	EndemicNo  = "No"

	AltitudeBelow500   = "<500"
	Altitude501To1000  = "501-1000"
	Altitude1001To1500 = "1001-1500"
	AltitudeAbove1500  = ">1500"

	ExploitationNone       = "Not exploited"
	ExploitationLocal      = "Local use"
	ExploitationCommercial = "Commercial use"
)

// Computed column names, shared by readers that must not treat them as input.
const (
	ColIUCNScore         = "iucn_score"
	ColEndemismScore     = "endemism_score"
	ColThreatScore       = "threat_score"
	ColAltitudeScore     = "altitude_score"
	ColExploitationScore = "exploitation_score"
	ColHabitatScore      = "habitat_score"
	ColUseScore          = "use_score"
	ColTotalScore        = "total_score"
	ColPriority          = "priority"
)

// Columns returns the computed columns in output order.
func Columns() []string {
	return []string{
		ColIUCNScore,
		ColEndemismScore,
		ColThreatScore,
		ColAltitudeScore,
		ColExploitationScore,
		ColHabitatScore,
		ColUseScore,
		ColTotalScore,
		ColPriority,
	}
}

// Record is a single species attribute record as supplied by the caller.
type Record struct {
	SpeciesName        string  `json:"species_name" yaml:"speciesName"`
	IUCNStatus         string  `json:"iucn_status" yaml:"iucnStatus"`
	Endemism           string  `json:"endemism" yaml:"endemism"`
	ThreatLevel        float64 `json:"threat_level" yaml:"threatLevel"`
	AltitudinalRange   string  `json:"altitudinal_range" yaml:"altitudinalRange"`
	Exploitation       string  `json:"exploitation" yaml:"exploitation"`
	HabitatSpecificity int     `json:"habitat_specificity" yaml:"habitatSpecificity"`
	UseValue           int     `json:"use_value" yaml:"useValue"`
}

// Scored is a Record augmented with its sub-scores, total, and priority.
type Scored struct {
	Record `yaml:",inline"`

	IUCNScore         float64  `json:"iucn_score" yaml:"iucnScore"`
	EndemismScore     float64  `json:"endemism_score" yaml:"endemismScore"`
	ThreatScore       float64  `json:"threat_score" yaml:"threatScore"`
	AltitudeScore     float64  `json:"altitude_score" yaml:"altitudeScore"`
	ExploitationScore float64  `json:"exploitation_score" yaml:"exploitationScore"`
	HabitatScore      float64  `json:"habitat_score" yaml:"habitatScore"`
	UseScore          float64  `json:"use_score" yaml:"useScore"`
	TotalScore        float64  `json:"total_score" yaml:"totalScore"`
	Priority          Priority `json:"priority" yaml:"priority"`
}

// IUCNStatuses returns the recognized IUCN categories, most threatened first.
func IUCNStatuses() []string {
	return []string{
		IUCNCriticallyEndangered,
		IUCNEndangered,
		IUCNVulnerable,
		IUCNNearThreatened,
		IUCNLeastConcern,
	}
}

func EndemismValues() []string {
	return []string{EndemicYes, EndemicNo}
}

func AltitudinalRanges() []string {
	return []string{AltitudeBelow500, Altitude501To1000, Altitude1001To1500, AltitudeAbove1500}
}

func ExploitationLevels() []string {
	return []string{ExploitationNone, ExploitationLocal, ExploitationCommercial}
}
