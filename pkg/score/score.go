package score

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

const (
	iucnWeight         = 3
	endemismWeight     = 2
	threatWeight       = 3
	altitudeWeight     = 1
	exploitationWeight = 2
	habitatWeight      = 1.5
	useWeight          = 1.5

	// WorkersDefault is the parallelism used by ScoreAll when none is given.
	WorkersDefault = 4
)

var (
	iucnCodes = map[string]float64{
		IUCNCriticallyEndangered: 5,
		IUCNEndangered:           4,
		IUCNVulnerable:           3,
		IUCNNearThreatened:       2,
		IUCNLeastConcern:         1,
	}

	endemismCodes = map[string]float64{
		EndemicYes: 2,
		EndemicNo:  1,
	}

	altitudeCodes = map[string]float64{
		AltitudeBelow500:   4,
		Altitude501To1000:  3,
		Altitude1001To1500: 2,
		AltitudeAbove1500:  1,
	}

	exploitationCodes = map[string]float64{
		ExploitationNone:       1,
		ExploitationLocal:      2,
		ExploitationCommercial: 3,
	}
)

// Score scores each record independently. The result has the same length and
// order as records; a nil record yields a nil entry.
func Score(records []*Record) []*Scored {
	out := make([]*Scored, len(records))
	for i, r := range records {
		out[i] = ScoreOne(r)
	}
	return out
}

// ScoreOne computes the sub-scores, total, and priority for a single record.
// Values outside the known vocabularies contribute the lowest code, the
// record itself is never modified.
func ScoreOne(r *Record) *Scored {
	if r == nil {
		return nil
	}

	s := &Scored{
		Record:            *r,
		IUCNScore:         iucnCodes[r.IUCNStatus] * iucnWeight,
		EndemismScore:     endemismCodes[r.Endemism] * endemismWeight,
		ThreatScore:       r.ThreatLevel * threatWeight,
		AltitudeScore:     altitudeCodes[r.AltitudinalRange] * altitudeWeight,
		ExploitationScore: exploitationCodes[r.Exploitation] * exploitationWeight,
		HabitatScore:      habitatCode(r.HabitatSpecificity) * habitatWeight,
		UseScore:          useCode(r.UseValue) * useWeight,
	}

	s.TotalScore = s.IUCNScore +
		s.EndemismScore +
		s.ThreatScore +
		s.AltitudeScore +
		s.ExploitationScore +
		s.HabitatScore +
		s.UseScore

	s.Priority = PriorityFor(s.TotalScore)
	return s
}

// habitatCode favors species occupying fewer habitats.
func habitatCode(n int) float64 {
	switch n {
	case 1:
		return 4
	case 2:
		return 3
	case 3:
		return 2
	default:
		return 1
	}
}

func useCode(n int) float64 {
	switch n {
	case 0:
		return 1
	case 1:
		return 2
	case 2:
		return 3
	case 3:
		return 4
	default:
		return 5
	}
}

// ScoreAll scores records on up to workers goroutines. Output index i always
// holds the result for records[i]. The only error returned is the context's.
func ScoreAll(ctx context.Context, records []*Record, workers int) ([]*Scored, error) {
	if workers < 1 {
		workers = WorkersDefault
	}

	out := make([]*Scored, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, r := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = ScoreOne(r)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring %d records: %w", len(records), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scoring %d records: %w", len(records), err)
	}

	slog.Debug("scored records", "count", len(out), "workers", workers)
	return out, nil
}
