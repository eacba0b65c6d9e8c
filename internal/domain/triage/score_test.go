package triage

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestScore_ZeroInputs(t *testing.T) {
	if got := Score(nil, 0, 36.5); got != 0 {
		t.Errorf("expected 0 probability, got %v", got)
	}
}

func TestScore_SevereCholeraPicture(t *testing.T) {
	// Profuse watery diarrhea and persistent vomiting at full intensity,
	// moderate dehydration, high fever.
	obs := []SymptomObservation{
		{Severity: 5, CholeraSpecific: true, Intensity: 5},
		{Severity: 4, CholeraSpecific: true, Intensity: 5},
	}
	got := Score(obs, 8, 39.0)
	if !almostEqual(got, 72.0) {
		t.Errorf("expected probability 72.0, got %v", got)
	}
	if got <= 70 {
		t.Errorf("severe picture must exceed 70, got %v", got)
	}
}

func TestScore_MildNonSpecificPicture(t *testing.T) {
	obs := []SymptomObservation{
		{Severity: 2, CholeraSpecific: false, Intensity: 3},
	}
	got := Score(obs, 2, 37.0)
	if !almostEqual(got, 9.2) {
		t.Errorf("expected probability 9.2, got %v", got)
	}
	if got >= 30 {
		t.Errorf("mild picture must stay below 30, got %v", got)
	}
}

func TestScore_CholeraSpecificDoublesWeight(t *testing.T) {
	base := []SymptomObservation{{Severity: 3, CholeraSpecific: false, Intensity: 4}}
	specific := []SymptomObservation{{Severity: 3, CholeraSpecific: true, Intensity: 4}}
	if Score(specific, 0, 36.5) != 2*Score(base, 0, 36.5) {
		t.Error("cholera-specific symptom should contribute exactly double")
	}
}

func TestScore_FeverSaturates(t *testing.T) {
	at39 := Score(nil, 0, 39.0)
	at42 := Score(nil, 0, 42.0)
	if at39 != at42 {
		t.Errorf("fever term should saturate at 39.0: %v vs %v", at39, at42)
	}
	if !almostEqual(at39, 10.0) {
		t.Errorf("saturated fever alone should yield 10.0, got %v", at39)
	}
}

func TestScore_MonotoneInIntensity(t *testing.T) {
	prev := -1.0
	for intensity := 1; intensity <= 5; intensity++ {
		obs := []SymptomObservation{{Severity: 4, CholeraSpecific: true, Intensity: intensity}}
		got := Score(obs, 5, 38.0)
		if got <= prev {
			t.Fatalf("score must grow with intensity: %v then %v at intensity %d", prev, got, intensity)
		}
		prev = got
	}
}

func TestScore_MonotoneInDehydration(t *testing.T) {
	prev := -1.0
	for _, index := range []float64{0, 5, 10, 20, 30} {
		got := Score(nil, index, 36.5)
		if got <= prev {
			t.Fatalf("score must grow with dehydration: %v then %v at index %v", prev, got, index)
		}
		prev = got
	}
}

func TestScore_Deterministic(t *testing.T) {
	obs := []SymptomObservation{
		{Severity: 5, CholeraSpecific: true, Intensity: 4},
		{Severity: 2, CholeraSpecific: false, Intensity: 2},
	}
	first := Score(obs, 12, 38.2)
	for i := 0; i < 10; i++ {
		if got := Score(obs, 12, 38.2); got != first {
			t.Fatalf("score is not deterministic: %v vs %v", first, got)
		}
	}
}

func TestScore_BoundedAt100(t *testing.T) {
	obs := []SymptomObservation{
		{Severity: 5, CholeraSpecific: true, Intensity: 5},
		{Severity: 5, CholeraSpecific: true, Intensity: 5},
	}
	if got := Score(obs, 30, 42.0); !almostEqual(got, 100) || got > 100 {
		t.Errorf("maximal inputs should score 100, got %v", got)
	}
}

func TestClassify_Bands(t *testing.T) {
	cases := []struct {
		probability float64
		want        string
	}{
		{0, UrgencyBaixo},
		{29.9, UrgencyBaixo},
		{30, UrgencyMedio},
		{59.9, UrgencyMedio},
		{60, UrgencyAlto},
		{79.9, UrgencyAlto},
		{80, UrgencyCritico},
		{100, UrgencyCritico},
	}
	for _, tc := range cases {
		if got := Classify(tc.probability, 0, 36.5, 80, 16); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.probability, got, tc.want)
		}
	}
}

func TestClassify_DangerBandEscalatesOneLevel(t *testing.T) {
	if got := Classify(10, 0, 36.5, 130, 16); got != UrgencyMedio {
		t.Errorf("tachycardia should escalate baixo to medio, got %s", got)
	}
	if got := Classify(45, 0, 36.5, 80, 35); got != UrgencyAlto {
		t.Errorf("tachypnea should escalate medio to alto, got %s", got)
	}
	if got := Classify(65, 28, 36.5, 80, 16); got != UrgencyCritico {
		t.Errorf("severe dehydration should escalate alto to critico, got %s", got)
	}
	if got := Classify(90, 0, 40.5, 130, 35); got != UrgencyCritico {
		t.Errorf("critico must not escalate past itself, got %s", got)
	}
}

func TestClassify_BoundaryVitalsDoNotEscalate(t *testing.T) {
	// Exactly at the limits is still inside the safe band.
	if got := Classify(10, 27, 39.9, 120, 30); got != UrgencyBaixo {
		t.Errorf("boundary vitals should not escalate, got %s", got)
	}
}
