package interaction

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/domain/medication"
)

// ScoreConfig holds the tunable parameters of the safety score.
// SeverityWeight and TimingWeight form a convex combination.
type ScoreConfig struct {
	SeverityWeight  float64
	TimingWeight    float64
	SeverityWeights SeverityWeights
}

// DefaultScoreConfig returns the standard scoring parameters.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		SeverityWeight:  0.7,
		TimingWeight:    0.3,
		SeverityWeights: DefaultSeverityWeights(),
	}
}

// Service aggregates the per-source checkers into a single safety view
// over a patient's medication list. It holds no per-request state and
// is safe for concurrent use.
type Service struct {
	drugs       *DrugChecker
	herbs       *HerbChecker
	score       ScoreConfig
	minInterval int
	logger      zerolog.Logger
}

// NewService wires the aggregator. minInterval is the minimum safe
// spacing between doses, in minutes.
func NewService(drugs *DrugChecker, herbs *HerbChecker, score ScoreConfig, minInterval int, logger zerolog.Logger) *Service {
	if score.SeverityWeights == nil {
		score.SeverityWeights = DefaultSeverityWeights()
	}
	return &Service{drugs: drugs, herbs: herbs, score: score, minInterval: minInterval, logger: logger}
}

// CheckInteractions checks every unordered pair in meds against the
// appropriate source and returns the merged results. Fewer than two
// medications can never interact, so the result is empty. Pair checks
// run concurrently; a failing reference source contributes an empty
// result rather than failing the whole call.
func (s *Service) CheckInteractions(ctx context.Context, meds []medication.Medication) ([]Result, error) {
	if len(meds) < 2 {
		return []Result{}, nil
	}

	type pairCheck struct {
		results []Result
		err     error
	}
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		checks []pairCheck
	)
	for i := 0; i < len(meds); i++ {
		for j := i + 1; j < len(meds); j++ {
			wg.Add(1)
			go func(a, b medication.Medication) {
				defer wg.Done()
				res, err := s.checkPair(ctx, a, b)
				mu.Lock()
				checks = append(checks, pairCheck{results: res, err: err})
				mu.Unlock()
			}(meds[i], meds[j])
		}
	}
	wg.Wait()

	merged := []Result{}
	for _, c := range checks {
		if c.err != nil {
			return nil, c.err
		}
		merged = append(merged, c.results...)
	}
	merged = dedupe(merged)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Severity.Compare(merged[j].Severity) > 0
	})
	return merged, nil
}

// checkPair routes one pair to the drug-drug or herb-drug checker.
// Two herbs pair through the supplement registry with the first herb
// in the supplement position.
func (s *Service) checkPair(ctx context.Context, a, b medication.Medication) ([]Result, error) {
	aHerb := IsHerbalSupplement(a.Name)
	bHerb := IsHerbalSupplement(b.Name)
	switch {
	case aHerb:
		return s.herbs.CheckInteraction(ctx, a.NormalizedName(), b.NormalizedName())
	case bHerb:
		return s.herbs.CheckInteraction(ctx, b.NormalizedName(), a.NormalizedName())
	default:
		return s.drugs.CheckInteraction(ctx, a.NormalizedName(), b.NormalizedName())
	}
}

// ValidateTiming checks every pair's dose schedules for doses spaced
// closer than the configured minimum interval.
func (s *Service) ValidateTiming(meds []medication.Medication) []TimingConflict {
	conflicts := []TimingConflict{}
	for i := 0; i < len(meds); i++ {
		for j := i + 1; j < len(meds); j++ {
			conflicts = append(conflicts, checkPairTiming(meds[i], meds[j], s.minInterval)...)
		}
	}
	return conflicts
}

// RequiresImmediateAttention reports whether any detected interaction
// is severe and flagged for immediate attention.
func (s *Service) RequiresImmediateAttention(ctx context.Context, meds []medication.Medication) (bool, error) {
	results, err := s.CheckInteractions(ctx, meds)
	if err != nil {
		return false, err
	}
	for _, r := range results {
		if r.Severity == SeveritySevere && r.RequiresImmediateAttention {
			return true, nil
		}
	}
	return false, nil
}

// SafetyScore computes the normalized safety score in [0,1]. Higher is
// safer. The score blends the mean severity weight of detected
// interactions with a timing component; with no interactions the
// timing component stands alone.
func (s *Service) SafetyScore(ctx context.Context, meds []medication.Medication) (float64, error) {
	results, err := s.CheckInteractions(ctx, meds)
	if err != nil {
		return 0, err
	}
	timing := s.timingScore(meds)
	if len(results) == 0 {
		return clamp01(timing), nil
	}
	var total float64
	for _, r := range results {
		total += s.score.SeverityWeights[r.Severity]
	}
	mean := total / float64(len(results))
	score := s.score.SeverityWeight*(1-mean) + s.score.TimingWeight*timing
	return clamp01(score), nil
}

// timingScore maps the schedule's conflict density onto [0,1], where 1
// means no dose pair violates the minimum interval. Each conflict is
// weighted by how near the doses are: doses at identical times weigh
// 1, doses just inside the interval weigh close to 0.
func (s *Service) timingScore(meds []medication.Medication) float64 {
	comparisons := 0
	for i := 0; i < len(meds); i++ {
		for j := i + 1; j < len(meds); j++ {
			comparisons += len(meds[i].ScheduleTimes) * len(meds[j].ScheduleTimes)
		}
	}
	if comparisons == 0 {
		return 1
	}
	var weighted float64
	for _, c := range s.ValidateTiming(meds) {
		weighted += 1 - float64(c.MinutesApart)/float64(s.minInterval)
	}
	return clamp01(1 - weighted/float64(comparisons))
}

// SafetyReport bundles the full safety view returned to callers.
type SafetyReport struct {
	Interactions               []Result         `json:"interactions"`
	TimingConflicts            []TimingConflict `json:"timing_conflicts"`
	SafetyScore                float64          `json:"safety_score"`
	RequiresImmediateAttention bool             `json:"requires_immediate_attention"`
}

// Report runs the full evaluation over one medication list. The source
// lookups underneath are cached, so the three derived views share one
// set of reference calls.
func (s *Service) Report(ctx context.Context, meds []medication.Medication) (*SafetyReport, error) {
	results, err := s.CheckInteractions(ctx, meds)
	if err != nil {
		return nil, err
	}
	conflicts := s.ValidateTiming(meds)

	attention := false
	for _, r := range results {
		if r.Severity == SeveritySevere && r.RequiresImmediateAttention {
			attention = true
			break
		}
	}

	timing := s.timingScore(meds)
	score := timing
	if len(results) > 0 {
		var total float64
		for _, r := range results {
			total += s.score.SeverityWeights[r.Severity]
		}
		mean := total / float64(len(results))
		score = s.score.SeverityWeight*(1-mean) + s.score.TimingWeight*timing
	}

	return &SafetyReport{
		Interactions:               results,
		TimingConflicts:            conflicts,
		SafetyScore:                clamp01(score),
		RequiresImmediateAttention: attention,
	}, nil
}

// EmergencyInstructions builds the ordered guidance shown to a user
// when a severe interaction is detected. Stopping the involved
// medications always comes first.
func (s *Service) EmergencyInstructions(meds []medication.Medication, r Result) []string {
	instructions := []string{
		fmt.Sprintf("Stop taking %s and %s immediately.", r.Medications[0], r.Medications[1]),
		fmt.Sprintf("Detected interaction: %s.", r.Description),
		"Watch for unusual bleeding, dizziness, difficulty breathing, or severe drowsiness.",
	}
	for _, rec := range r.Recommendations {
		instructions = append(instructions, rec)
	}
	instructions = append(instructions,
		"If symptoms appear, call emergency services (911) now.",
		"Poison Control is available 24/7 at 1-800-222-1222.",
		"Contact your prescribing provider before resuming any of these medications.",
	)
	return instructions
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
