package models

// Review status values shared by algorithm and code submissions.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// ReviewDecision is a reviewer verdict applied to the latest pending submission.
type ReviewDecision string

// Accepted reviewer verdicts.
const (
	ReviewDecisionApproved ReviewDecision = "approved"
	ReviewDecisionRejected ReviewDecision = "rejected"
)

// Valid reports whether the decision is one of the accepted verdicts.
func (d ReviewDecision) Valid() bool {
	return d == ReviewDecisionApproved || d == ReviewDecisionRejected
}

// Status returns the review status a submission ends up in after the decision.
func (d ReviewDecision) Status() string {
	return string(d)
}
