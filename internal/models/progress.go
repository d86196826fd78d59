package models

// ProgressStatus is the derived workflow stage for one (program, student)
// pair. It is computed from the latest submission rows and never stored.
type ProgressStatus string

const (
	ProgressNotStarted        ProgressStatus = "not_started"
	ProgressAlgorithmPending  ProgressStatus = "algorithm_pending"
	ProgressAlgorithmRejected ProgressStatus = "algorithm_rejected"
	ProgressCodingStage       ProgressStatus = "coding_stage"
	ProgressCodeSubmitted     ProgressStatus = "code_submitted"
	ProgressFinalApproved     ProgressStatus = "final_approved"
)

// Terminal reports whether the workflow defines no transition out of the status.
func (s ProgressStatus) Terminal() bool {
	return s == ProgressFinalApproved
}

// DeriveProgress computes the combined stage from the latest row of each
// submission kind (nil when the pair has none). The rules are a priority
// table, first match wins: code-stage facts beat algorithm-stage facts, and a
// rejected code submission carries no weight: the student is back in the
// coding stage, so the algorithm facts decide.
func DeriveProgress(algorithm *AlgorithmSubmission, code *CodeSubmission) ProgressStatus {
	if code != nil {
		if code.IsApproved() {
			return ProgressFinalApproved
		}
		if code.IsPending() {
			return ProgressCodeSubmitted
		}
	}

	if algorithm == nil {
		return ProgressNotStarted
	}

	switch algorithm.Status {
	case ReviewStatusApproved:
		return ProgressCodingStage
	case ReviewStatusPending:
		return ProgressAlgorithmPending
	default:
		return ProgressAlgorithmRejected
	}
}
