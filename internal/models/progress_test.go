package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveProgress(t *testing.T) {
	algo := func(status string) *AlgorithmSubmission {
		return &AlgorithmSubmission{Status: status}
	}
	code := func(status string) *CodeSubmission {
		return &CodeSubmission{Status: status}
	}

	cases := []struct {
		name      string
		algorithm *AlgorithmSubmission
		code      *CodeSubmission
		want      ProgressStatus
	}{
		{"no submissions", nil, nil, ProgressNotStarted},
		{"algorithm pending", algo(ReviewStatusPending), nil, ProgressAlgorithmPending},
		{"algorithm rejected", algo(ReviewStatusRejected), nil, ProgressAlgorithmRejected},
		{"algorithm approved", algo(ReviewStatusApproved), nil, ProgressCodingStage},
		{"code pending", algo(ReviewStatusApproved), code(ReviewStatusPending), ProgressCodeSubmitted},
		{"code approved", algo(ReviewStatusApproved), code(ReviewStatusApproved), ProgressFinalApproved},
		{"code rejected falls back", algo(ReviewStatusApproved), code(ReviewStatusRejected), ProgressCodingStage},
		{"code approved wins over rejected draft", algo(ReviewStatusRejected), code(ReviewStatusApproved), ProgressFinalApproved},
		{"code pending wins over pending draft", algo(ReviewStatusPending), code(ReviewStatusPending), ProgressCodeSubmitted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DeriveProgress(tc.algorithm, tc.code))
		})
	}
}

func TestProgressTerminal(t *testing.T) {
	require.True(t, ProgressFinalApproved.Terminal())
	require.False(t, ProgressCodingStage.Terminal())
	require.False(t, ProgressNotStarted.Terminal())
}

func TestReviewDecision(t *testing.T) {
	require.True(t, ReviewDecisionApproved.Valid())
	require.True(t, ReviewDecisionRejected.Valid())
	require.False(t, ReviewDecision("maybe").Valid())
	require.Equal(t, ReviewStatusApproved, ReviewDecisionApproved.Status())
}
