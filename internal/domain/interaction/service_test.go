package interaction

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/domain/medication"
	"github.com/meditrack/meditrack/internal/platform/cache"
	"github.com/meditrack/meditrack/internal/platform/registry"
)

func med(t *testing.T, name string, times ...string) medication.Medication {
	t.Helper()
	m := medication.Medication{Name: name, DosageAmount: 1, DosageUnit: "mg"}
	for _, ts := range times {
		tod, err := medication.ParseTimeOfDay(ts)
		if err != nil {
			t.Fatalf("bad schedule time %q: %v", ts, err)
		}
		m.ScheduleTimes = append(m.ScheduleTimes, tod)
	}
	return m
}

func newTestService(t *testing.T, drugs *fakeDrugClient, herbs *fakeSupplementClient) *Service {
	t.Helper()
	if drugs == nil {
		drugs = &fakeDrugClient{}
	}
	if herbs == nil {
		herbs = &fakeSupplementClient{}
	}
	c := cache.New(100)
	return NewService(
		NewDrugChecker(drugs, c, time.Hour, zerolog.Nop()),
		NewHerbChecker(herbs, c, time.Hour, zerolog.Nop()),
		DefaultScoreConfig(),
		30,
		zerolog.Nop(),
	)
}

func TestCheckInteractions_FewerThanTwoMedications(t *testing.T) {
	svc := newTestService(t, nil, nil)

	for _, meds := range [][]medication.Medication{nil, {med(t, "warfarin")}} {
		results, err := svc.CheckInteractions(context.Background(), meds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no interactions for %d medications, got %d", len(meds), len(results))
		}
	}
}

func TestCheckInteractions_SevereDrugPair(t *testing.T) {
	svc := newTestService(t, warfarinAspirinClient(), nil)
	meds := []medication.Medication{med(t, "Warfarin", "08:00"), med(t, "Aspirin", "20:00")}

	results, err := svc.CheckInteractions(context.Background(), meds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(results))
	}
	if results[0].Severity != SeveritySevere {
		t.Errorf("expected severe, got %s", results[0].Severity)
	}

	attention, err := svc.RequiresImmediateAttention(context.Background(), meds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !attention {
		t.Error("severe interaction should require immediate attention")
	}

	score, err := svc.SafetyScore(context.Background(), meds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score >= 0.5 {
		t.Errorf("severe interaction should score below 0.5, got %f", score)
	}
}

func TestCheckInteractions_RepeatCallsShareSourceLookups(t *testing.T) {
	client := &fakeDrugClient{labels: map[string]*registry.DrugLabel{
		"metformin":  {},
		"lisinopril": {},
		"amlodipine": {},
	}}
	svc := newTestService(t, client, nil)
	meds := []medication.Medication{
		med(t, "metformin", "08:00"),
		med(t, "lisinopril", "12:00"),
		med(t, "amlodipine", "20:00"),
	}

	if _, err := svc.CheckInteractions(context.Background(), meds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after1 := client.count()
	if after1 != 6 {
		t.Fatalf("expected 6 label lookups for 3 pairs, got %d", after1)
	}
	if _, err := svc.CheckInteractions(context.Background(), meds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := client.count(); got != after1 {
		t.Errorf("repeat check should be served from cache, lookups went %d -> %d", after1, got)
	}
}

func TestCheckInteractions_RoutesHerbPairsToSupplementSource(t *testing.T) {
	drugClient := &fakeDrugClient{}
	herbClient := &fakeSupplementClient{reports: map[string]*registry.SupplementReport{
		"ginkgo|warfarin": {
			Interactions: []registry.SupplementInteraction{{
				Severity:    "severe",
				Description: "Ginkgo strongly potentiates warfarin.",
			}},
			EvidenceLevel: "case_reports",
		},
	}}
	svc := newTestService(t, drugClient, herbClient)
	meds := []medication.Medication{med(t, "Ginkgo", "08:00"), med(t, "Warfarin", "20:00")}

	results, err := svc.CheckInteractions(context.Background(), meds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Type != TypeHerbDrug {
		t.Fatalf("expected one herb_drug result, got %+v", results)
	}
	if drugClient.count() != 0 {
		t.Errorf("herb pair must not reach the drug label source, got %d lookups", drugClient.count())
	}
}

func TestCheckInteractions_MixedDrugAndHerbSet(t *testing.T) {
	drugClient := warfarinAspirinClient()
	herbClient := &fakeSupplementClient{reports: map[string]*registry.SupplementReport{
		"ginkgo|warfarin": {
			Interactions: []registry.SupplementInteraction{{
				Severity:    "high",
				Description: "Ginkgo may increase bleeding risk with warfarin.",
			}},
			EvidenceLevel: "clinical_study",
		},
	}}
	svc := newTestService(t, drugClient, herbClient)
	meds := []medication.Medication{
		med(t, "warfarin", "08:00"),
		med(t, "aspirin", "14:00"),
		med(t, "ginkgo", "20:00"),
	}

	results, err := svc.CheckInteractions(context.Background(), meds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var hasDrugDrug, hasHerbDrug bool
	for _, r := range results {
		switch r.Type {
		case TypeDrugDrug:
			hasDrugDrug = true
		case TypeHerbDrug:
			hasHerbDrug = true
		}
	}
	if !hasDrugDrug || !hasHerbDrug {
		t.Errorf("expected both drug_drug and herb_drug results, got %+v", results)
	}

	// Every pair's lookups are cached, so a repeat sweep issues no new
	// outbound calls to either source.
	drugCalls, herbCalls := drugClient.count(), herbClient.lookups
	if _, err := svc.CheckInteractions(context.Background(), meds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drugClient.count() != drugCalls || herbClient.lookups != herbCalls {
		t.Errorf("repeat sweep hit sources again: drug %d -> %d, herb %d -> %d",
			drugCalls, drugClient.count(), herbCalls, herbClient.lookups)
	}
}

func TestValidateTiming_ClosePairConflicts(t *testing.T) {
	svc := newTestService(t, nil, nil)
	meds := []medication.Medication{
		med(t, "metformin", "09:00"),
		med(t, "lisinopril", "09:15"),
	}

	conflicts := svc.ValidateTiming(meds)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	c := conflicts[0]
	if c.MinutesApart != 15 {
		t.Errorf("expected 15 minutes apart, got %d", c.MinutesApart)
	}
	if c.ConflictingTime != "09:00" {
		t.Errorf("expected conflict anchored at 09:00, got %s", c.ConflictingTime)
	}
	if c.Severity != TimingConflictSeverity {
		t.Errorf("expected medium severity, got %s", c.Severity)
	}
	if c.Recommendation == "" {
		t.Error("conflict should include a recommendation")
	}
}

func TestValidateTiming_ExactIntervalIsSafe(t *testing.T) {
	svc := newTestService(t, nil, nil)
	meds := []medication.Medication{
		med(t, "metformin", "09:00"),
		med(t, "lisinopril", "09:30"),
	}
	if conflicts := svc.ValidateTiming(meds); len(conflicts) != 0 {
		t.Errorf("doses exactly at the interval should not conflict, got %+v", conflicts)
	}
}

func TestSafetyScore_CleanListScoresHigh(t *testing.T) {
	client := &fakeDrugClient{labels: map[string]*registry.DrugLabel{
		"metformin":  {},
		"lisinopril": {},
	}}
	svc := newTestService(t, client, nil)
	meds := []medication.Medication{
		med(t, "metformin", "08:00"),
		med(t, "lisinopril", "20:00"),
	}

	score, err := svc.SafetyScore(context.Background(), meds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 1.0 {
		t.Errorf("no interactions and no conflicts should score 1.0, got %f", score)
	}
}

func TestSafetyScore_TimingConflictsLowerScore(t *testing.T) {
	client := &fakeDrugClient{labels: map[string]*registry.DrugLabel{
		"metformin":  {},
		"lisinopril": {},
	}}
	svc := newTestService(t, client, nil)
	meds := []medication.Medication{
		med(t, "metformin", "09:00"),
		med(t, "lisinopril", "09:15"),
	}

	score, err := svc.SafetyScore(context.Background(), meds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score >= 1.0 {
		t.Errorf("timing conflict should lower the score, got %f", score)
	}
	if score < 0 || score > 1 {
		t.Errorf("score out of range: %f", score)
	}
}

func TestReport_BundlesAllViews(t *testing.T) {
	svc := newTestService(t, warfarinAspirinClient(), nil)
	meds := []medication.Medication{
		med(t, "warfarin", "09:00"),
		med(t, "aspirin", "09:10"),
	}

	report, err := svc.Report(context.Background(), meds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Interactions) != 1 {
		t.Errorf("expected 1 interaction, got %d", len(report.Interactions))
	}
	if len(report.TimingConflicts) != 1 {
		t.Errorf("expected 1 timing conflict, got %d", len(report.TimingConflicts))
	}
	if !report.RequiresImmediateAttention {
		t.Error("severe interaction should set the attention flag")
	}
	if report.SafetyScore >= 0.5 {
		t.Errorf("report score should be below 0.5, got %f", report.SafetyScore)
	}
}

func TestEmergencyInstructions(t *testing.T) {
	svc := newTestService(t, nil, nil)
	r := Result{
		Severity:        SeveritySevere,
		Type:            TypeDrugDrug,
		Description:     "severe bleeding risk",
		Medications:     [2]string{"aspirin", "warfarin"},
		Recommendations: []string{"Seek INR testing within 24 hours."},
	}

	instructions := svc.EmergencyInstructions(nil, r)
	if len(instructions) < 4 {
		t.Fatalf("expected full instruction set, got %d lines", len(instructions))
	}
	if !strings.Contains(instructions[0], "Stop taking") {
		t.Errorf("stopping the medications must come first, got %q", instructions[0])
	}
	var has911, hasPoison, hasRec bool
	for _, line := range instructions {
		if strings.Contains(line, "911") {
			has911 = true
		}
		if strings.Contains(line, "1-800-222-1222") {
			hasPoison = true
		}
		if strings.Contains(line, "INR testing") {
			hasRec = true
		}
	}
	if !has911 || !hasPoison || !hasRec {
		t.Errorf("instructions missing required contacts or recommendations: %v", instructions)
	}
}
