package triage

// Scoring constants. The blend weights split the probability between the
// normalized symptom score, the dehydration estimate, and fever. The fever
// term saturates 1.5 degrees above the febrile threshold; the dehydration
// index is declared on a 0-30 scale.
const (
	symptomWeight     = 0.6
	dehydrationWeight = 0.3
	feverWeight       = 0.1

	feverThreshold = 37.5
	feverSpan      = 1.5

	dehydrationMax = 30.0

	// Danger bands for urgency escalation.
	tachycardiaLimit  = 120
	tachypneaLimit    = 30
	dehydrationDanger = 27.0
	hyperthermiaLimit = 40.0
)

// maxSymptomContribution is the contribution of a cholera-specific symptom
// at full severity and intensity: severity 5 x specificity 2 x intensity 5/5.
const maxSymptomContribution = 10.0

// Score computes the cholera probability (0-100) from the reported symptom
// observations, the dehydration index, and the temperature. It is a pure
// function: identical inputs always produce identical output.
func Score(observations []SymptomObservation, dehydrationIndex, temperature float64) float64 {
	var symptomNorm float64
	if len(observations) > 0 {
		var sum float64
		for _, obs := range observations {
			weight := float64(obs.Severity)
			if obs.CholeraSpecific {
				weight *= 2.0
			}
			sum += weight * float64(obs.Intensity) / 5.0
		}
		// Normalize against the maximum attainable for the same symptom
		// count so encounters with few symptoms stay comparable.
		symptomNorm = sum / (maxSymptomContribution * float64(len(observations))) * 100.0
	}

	dehydrationTerm := clamp01(dehydrationIndex/dehydrationMax) * 100.0
	feverTerm := clamp01((temperature-feverThreshold)/feverSpan) * 100.0

	probability := symptomWeight*symptomNorm + dehydrationWeight*dehydrationTerm + feverWeight*feverTerm
	if probability < 0 {
		return 0
	}
	if probability > 100 {
		return 100
	}
	return probability
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

// Classify maps a probability plus raw vitals to an urgency level. The
// probability bands give the base level; any vital in a danger band
// escalates it by exactly one step, capped at critico.
func Classify(probability, dehydrationIndex, temperature float64, heartRate, respiratoryRate int) string {
	level := UrgencyBaixo
	switch {
	case probability >= 80:
		level = UrgencyCritico
	case probability >= 60:
		level = UrgencyAlto
	case probability >= 30:
		level = UrgencyMedio
	}

	if heartRate > tachycardiaLimit ||
		respiratoryRate > tachypneaLimit ||
		dehydrationIndex > dehydrationDanger ||
		temperature >= hyperthermiaLimit {
		level = escalate(level)
	}
	return level
}

func escalate(level string) string {
	switch level {
	case UrgencyBaixo:
		return UrgencyMedio
	case UrgencyMedio:
		return UrgencyAlto
	case UrgencyAlto:
		return UrgencyCritico
	default:
		return UrgencyCritico
	}
}
