package score

// Summary aggregates a scored batch.
type Summary struct {
	Count      int              `json:"count" yaml:"count"`
	Priorities map[Priority]int `json:"priorities" yaml:"priorities"`
	MeanTotal  float64          `json:"mean_total" yaml:"meanTotal"`
	MaxTotal   float64          `json:"max_total" yaml:"maxTotal"`
	MinTotal   float64          `json:"min_total" yaml:"minTotal"`
}

func Summarize(list []*Scored) *Summary {
	s := &Summary{
		Priorities: make(map[Priority]int, len(AllPriorities())),
	}
	for _, p := range AllPriorities() {
		s.Priorities[p] = 0
	}

	var sum float64
	for _, item := range list {
		if item == nil {
			continue
		}
		if s.Count == 0 || item.TotalScore > s.MaxTotal {
			s.MaxTotal = item.TotalScore
		}
		if s.Count == 0 || item.TotalScore < s.MinTotal {
			s.MinTotal = item.TotalScore
		}
		s.Count++
		s.Priorities[item.Priority]++
		sum += item.TotalScore
	}

	if s.Count > 0 {
		s.MeanTotal = sum / float64(s.Count)
	}
	return s
}
