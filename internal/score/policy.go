package score

import "github.com/ymansouri/claimsort/internal/model"

// DecisionInput gathers everything that can count against an ACCEPT, at
// either document or dossier granularity. Zero values are "no adverse
// evidence".
type DecisionInput struct {
	Score     int
	Threshold int

	Issues       int // validation issues (document) or cross-check issues (dossier)
	FraudSignals int
	MissingDocs  int // dossier only
	ReviewDocs   int // dossier only: documents not individually accepted
}

// Decide is the single two-outcome policy shared by the per-document
// scorer and the dossier aggregator. There is no REJECT outcome in this
// domain; the only question is whether a human must look. The rule is
// monotone: any adverse input can only move the outcome toward REVIEW.
func Decide(in DecisionInput) model.Decision {
	if in.FraudSignals > 0 ||
		in.Issues > 0 ||
		in.MissingDocs > 0 ||
		in.ReviewDocs > 0 ||
		in.Score < in.Threshold {
		return model.DecisionReview
	}
	return model.DecisionAccept
}
