package triage

// RecommendationInput carries everything the rule table looks at.
type RecommendationInput struct {
	Probability        float64
	UrgencyLevel       string
	DehydrationIndex   float64
	Temperature        float64
	HasCholeraSpecific bool
}

type recommendationRule struct {
	applies func(in RecommendationInput) bool
	message string
}

// recommendationRules fire in order and accumulate; no rule suppresses
// another, so a severe case collects the full set of directives.
var recommendationRules = []recommendationRule{
	{
		applies: func(in RecommendationInput) bool {
			return in.DehydrationIndex >= 5 || in.Probability >= 60
		},
		message: "Iniciar reidratacao oral com sais de reidratacao (SRO) imediatamente",
	},
	{
		applies: func(in RecommendationInput) bool {
			return in.DehydrationIndex >= 15 || in.Probability >= 80
		},
		message: "Administrar reidratacao intravenosa e monitorar sinais vitais continuamente",
	},
	{
		applies: func(in RecommendationInput) bool {
			return in.Temperature > feverThreshold
		},
		message: "Administrar antitermico e monitorar temperatura a cada 2 horas",
	},
	{
		applies: func(in RecommendationInput) bool {
			return in.HasCholeraSpecific
		},
		message: "Isolar paciente e notificar vigilancia epidemiologica",
	},
	{
		applies: func(in RecommendationInput) bool {
			return in.UrgencyLevel == UrgencyCritico
		},
		message: "Encaminhar imediatamente para unidade com capacidade de internacao",
	},
}

// Recommend returns the ordered list of care directives fired by the rule
// table. Identical input yields an identical list.
func Recommend(in RecommendationInput) []string {
	var out []string
	for _, rule := range recommendationRules {
		if rule.applies(in) {
			out = append(out, rule.message)
		}
	}
	return out
}
