package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/dto"
	"github.com/algolab-dev/labrec-api/internal/models"
	"github.com/algolab-dev/labrec-api/internal/repository"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) next() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

type stubAlgorithmRepo struct {
	clock *fakeClock
	rows  []models.AlgorithmSubmission
}

func (r *stubAlgorithmRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]models.AlgorithmSubmission, error) {
	var result []models.AlgorithmSubmission
	for i := len(r.rows) - 1; i >= 0; i-- {
		row := r.rows[i]
		if filter.ProgramID != nil && row.ProgramID != *filter.ProgramID {
			continue
		}
		if filter.StudentID != nil && row.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		result = append(result, row)
	}
	return result, nil
}

func (r *stubAlgorithmRepo) GetByID(_ context.Context, id string) (models.AlgorithmSubmission, error) {
	for _, row := range r.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return models.AlgorithmSubmission{}, gorm.ErrRecordNotFound
}

func (r *stubAlgorithmRepo) LatestForPair(_ context.Context, programID, studentID string) (models.AlgorithmSubmission, error) {
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].ProgramID == programID && r.rows[i].StudentID == studentID {
			return r.rows[i], nil
		}
	}
	return models.AlgorithmSubmission{}, gorm.ErrRecordNotFound
}

func (r *stubAlgorithmRepo) Create(_ context.Context, submission *models.AlgorithmSubmission) error {
	submission.ID = uuid.NewString()
	submission.CreatedAt = r.clock.next()
	submission.UpdatedAt = submission.CreatedAt
	r.rows = append(r.rows, *submission)
	return nil
}

func (r *stubAlgorithmRepo) Update(_ context.Context, submission *models.AlgorithmSubmission) error {
	for i := range r.rows {
		if r.rows[i].ID == submission.ID {
			submission.UpdatedAt = r.clock.next()
			r.rows[i] = *submission
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubCodeRepo struct {
	clock *fakeClock
	rows  []models.CodeSubmission
}

func (r *stubCodeRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]models.CodeSubmission, error) {
	var result []models.CodeSubmission
	for i := len(r.rows) - 1; i >= 0; i-- {
		row := r.rows[i]
		if filter.ProgramID != nil && row.ProgramID != *filter.ProgramID {
			continue
		}
		if filter.StudentID != nil && row.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		result = append(result, row)
	}
	return result, nil
}

func (r *stubCodeRepo) GetByID(_ context.Context, id string) (models.CodeSubmission, error) {
	for _, row := range r.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return models.CodeSubmission{}, gorm.ErrRecordNotFound
}

func (r *stubCodeRepo) LatestForPair(_ context.Context, programID, studentID string) (models.CodeSubmission, error) {
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].ProgramID == programID && r.rows[i].StudentID == studentID {
			return r.rows[i], nil
		}
	}
	return models.CodeSubmission{}, gorm.ErrRecordNotFound
}

func (r *stubCodeRepo) Create(_ context.Context, submission *models.CodeSubmission) error {
	submission.ID = uuid.NewString()
	submission.CreatedAt = r.clock.next()
	submission.UpdatedAt = submission.CreatedAt
	r.rows = append(r.rows, *submission)
	return nil
}

func (r *stubCodeRepo) Update(_ context.Context, submission *models.CodeSubmission) error {
	for i := range r.rows {
		if r.rows[i].ID == submission.ID {
			submission.UpdatedAt = r.clock.next()
			r.rows[i] = *submission
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubProgramRepo struct {
	programs map[string]models.Program
}

func (r *stubProgramRepo) List(_ context.Context, _ repository.ProgramFilter) ([]models.Program, int64, error) {
	var result []models.Program
	for _, program := range r.programs {
		result = append(result, program)
	}
	return result, int64(len(result)), nil
}

func (r *stubProgramRepo) GetByID(_ context.Context, id string) (models.Program, error) {
	if program, ok := r.programs[id]; ok {
		return program, nil
	}
	return models.Program{}, gorm.ErrRecordNotFound
}

func (r *stubProgramRepo) Create(_ context.Context, program *models.Program) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	r.programs[program.ID] = *program
	return nil
}

func (r *stubProgramRepo) Update(_ context.Context, program *models.Program) error {
	r.programs[program.ID] = *program
	return nil
}

type stubNotifier struct {
	published []dto.NotificationCreateRequest
}

func (n *stubNotifier) Publish(_ context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	n.published = append(n.published, payload)
	return dto.NotificationResponse{ID: uuid.NewString(), UserID: payload.UserID, Title: payload.Title, Body: payload.Body}, nil
}

type workflowFixture struct {
	service    WorkflowService
	algorithms *stubAlgorithmRepo
	codes      *stubCodeRepo
	programs   *stubProgramRepo
	notifier   *stubNotifier
	programID  string
	studentID  string
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	clock := &fakeClock{current: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)}
	algorithms := &stubAlgorithmRepo{clock: clock}
	codes := &stubCodeRepo{clock: clock}
	programs := &stubProgramRepo{programs: map[string]models.Program{}}
	notifier := &stubNotifier{}

	programID := uuid.NewString()
	programs.programs[programID] = models.Program{
		ID:        programID,
		Title:     "Binary Search",
		Status:    models.ProgramStatusActive,
		CreatedBy: uuid.NewString(),
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewWorkflowService(algorithms, codes, programs, validate, notifier, zerolog.Nop())

	return &workflowFixture{
		service:    svc,
		algorithms: algorithms,
		codes:      codes,
		programs:   programs,
		notifier:   notifier,
		programID:  programID,
		studentID:  uuid.NewString(),
	}
}

func strPtr(s string) *string {
	return &s
}

func TestSubmitAlgorithmCreatesPendingRow(t *testing.T) {
	f := newWorkflowFixture(t)

	submission, err := f.service.SubmitAlgorithm(context.Background(), f.studentID, dto.AlgorithmSubmitRequest{
		ProgramID: f.programID,
		Content:   "read n; binary search over sorted input",
	})
	require.NoError(t, err)
	require.NotEmpty(t, submission.ID)
	require.Equal(t, models.ReviewStatusPending, submission.Status)

	status, err := f.service.DeriveStatus(context.Background(), f.programID, f.studentID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressAlgorithmPending, status)
}

func TestSubmitAlgorithmRejectsBlankContent(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.service.SubmitAlgorithm(context.Background(), f.studentID, dto.AlgorithmSubmitRequest{
		ProgramID: f.programID,
		Content:   "   \n\t ",
	})
	require.ErrorIs(t, err, ErrEmptyContent)
	require.Empty(t, f.algorithms.rows)
}

func TestSubmitAlgorithmUnknownProgram(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.service.SubmitAlgorithm(context.Background(), f.studentID, dto.AlgorithmSubmitRequest{
		ProgramID: uuid.NewString(),
		Content:   "step 1",
	})
	require.ErrorIs(t, err, ErrProgramNotFound)
}

func TestReviewAlgorithmApprovePublishesNotification(t *testing.T) {
	f := newWorkflowFixture(t)

	submission, err := f.service.SubmitAlgorithm(context.Background(), f.studentID, dto.AlgorithmSubmitRequest{
		ProgramID: f.programID,
		Content:   "two pointers",
	})
	require.NoError(t, err)

	reviewed, err := f.service.ReviewAlgorithm(context.Background(), submission.ID, dto.ReviewRequest{
		Decision: models.ReviewDecisionApproved,
	})
	require.NoError(t, err)
	require.Equal(t, models.ReviewStatusApproved, reviewed.Status)

	require.Len(t, f.notifier.published, 1)
	require.Equal(t, f.studentID, f.notifier.published[0].UserID)
	require.Contains(t, f.notifier.published[0].Title, "approved")
}

func TestReviewAlgorithmUnknownSubmission(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.service.ReviewAlgorithm(context.Background(), uuid.NewString(), dto.ReviewRequest{
		Decision: models.ReviewDecisionApproved,
	})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestReviewAlgorithmRepeatedDecisionIsNoOp(t *testing.T) {
	f := newWorkflowFixture(t)

	submission, err := f.service.SubmitAlgorithm(context.Background(), f.studentID, dto.AlgorithmSubmitRequest{
		ProgramID: f.programID,
		Content:   "sort then scan",
	})
	require.NoError(t, err)

	first, err := f.service.ReviewAlgorithm(context.Background(), submission.ID, dto.ReviewRequest{
		Decision: models.ReviewDecisionApproved,
	})
	require.NoError(t, err)

	second, err := f.service.ReviewAlgorithm(context.Background(), submission.ID, dto.ReviewRequest{
		Decision: models.ReviewDecisionApproved,
	})
	require.NoError(t, err)
	require.Equal(t, first.UpdatedAt, second.UpdatedAt)
	require.Len(t, f.notifier.published, 1)
}

func TestReviewFeedbackIsSanitized(t *testing.T) {
	f := newWorkflowFixture(t)

	submission, err := f.service.SubmitAlgorithm(context.Background(), f.studentID, dto.AlgorithmSubmitRequest{
		ProgramID: f.programID,
		Content:   "naive loop",
	})
	require.NoError(t, err)

	reviewed, err := f.service.ReviewAlgorithm(context.Background(), submission.ID, dto.ReviewRequest{
		Decision: models.ReviewDecisionRejected,
		Feedback: strPtr("<script>alert(1)</script>too vague"),
	})
	require.NoError(t, err)
	require.Equal(t, "too vague", reviewed.Feedback)
}

func TestSubmitCodeRequiresApprovedAlgorithm(t *testing.T) {
	f := newWorkflowFixture(t)

	// No algorithm submitted at all.
	_, err := f.service.SubmitCode(context.Background(), f.studentID, dto.CodeSubmitRequest{
		ProgramID: f.programID,
		Code:      "print('hi')",
		Language:  "python",
	})
	require.ErrorIs(t, err, ErrAlgorithmNotApproved)

	// Pending algorithm still blocks code submission.
	_, err = f.service.SubmitAlgorithm(context.Background(), f.studentID, dto.AlgorithmSubmitRequest{
		ProgramID: f.programID,
		Content:   "loop over input",
	})
	require.NoError(t, err)

	_, err = f.service.SubmitCode(context.Background(), f.studentID, dto.CodeSubmitRequest{
		ProgramID: f.programID,
		Code:      "print('hi')",
		Language:  "python",
	})
	require.ErrorIs(t, err, ErrAlgorithmNotApproved)
}

func TestSubmitCodeRejectsBlankSource(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.service.SubmitCode(context.Background(), f.studentID, dto.CodeSubmitRequest{
		ProgramID: f.programID,
		Code:      "  \n ",
		Language:  "python",
	})
	require.ErrorIs(t, err, ErrEmptyCode)
}

func TestDeriveStatusNotStarted(t *testing.T) {
	f := newWorkflowFixture(t)

	status, err := f.service.DeriveStatus(context.Background(), f.programID, f.studentID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressNotStarted, status)
}

func TestWorkflowFullScenario(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	// 1. First draft lands as pending.
	first, err := f.service.SubmitAlgorithm(ctx, f.studentID, dto.AlgorithmSubmitRequest{
		ProgramID: f.programID,
		Content:   "step1; step2",
	})
	require.NoError(t, err)

	status, err := f.service.DeriveStatus(ctx, f.programID, f.studentID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressAlgorithmPending, status)

	// 2. Rejection with feedback surfaces on the pair progress view.
	_, err = f.service.ReviewAlgorithm(ctx, first.ID, dto.ReviewRequest{
		Decision: models.ReviewDecisionRejected,
		Feedback: strPtr("too vague"),
	})
	require.NoError(t, err)

	status, err = f.service.DeriveStatus(ctx, f.programID, f.studentID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressAlgorithmRejected, status)

	progress, err := f.service.PairProgress(ctx, f.programID, f.studentID)
	require.NoError(t, err)
	require.NotNil(t, progress.LatestAlgorithm)
	require.Equal(t, "too vague", progress.LatestAlgorithm.Feedback)

	// 3. Resubmission appends a fresh pending row; the rejected one survives.
	second, err := f.service.SubmitAlgorithm(ctx, f.studentID, dto.AlgorithmSubmitRequest{
		ProgramID: f.programID,
		Content:   "step1; step2; handle empty input",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.Len(t, f.algorithms.rows, 2)
	require.Equal(t, models.ReviewStatusRejected, f.algorithms.rows[0].Status)

	status, err = f.service.DeriveStatus(ctx, f.programID, f.studentID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressAlgorithmPending, status)

	// 4. Approving the latest draft opens the coding stage.
	_, err = f.service.ReviewAlgorithm(ctx, second.ID, dto.ReviewRequest{
		Decision: models.ReviewDecisionApproved,
	})
	require.NoError(t, err)

	status, err = f.service.DeriveStatus(ctx, f.programID, f.studentID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressCodingStage, status)

	// 5. Code submission lands as pending.
	code, err := f.service.SubmitCode(ctx, f.studentID, dto.CodeSubmitRequest{
		ProgramID: f.programID,
		Code:      "print(\"ok\")",
		Language:  "Python",
	})
	require.NoError(t, err)
	require.Equal(t, "python", code.Language)

	status, err = f.service.DeriveStatus(ctx, f.programID, f.studentID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressCodeSubmitted, status)

	// 6. Approving the code finalizes the pair.
	_, err = f.service.ReviewCode(ctx, code.ID, dto.ReviewRequest{
		Decision: models.ReviewDecisionApproved,
		Feedback: strPtr("clean solution"),
	})
	require.NoError(t, err)

	status, err = f.service.DeriveStatus(ctx, f.programID, f.studentID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressFinalApproved, status)
	require.True(t, status.Terminal())

	// The approved code keeps the pair final even though an old draft was rejected.
	progress, err = f.service.PairProgress(ctx, f.programID, f.studentID)
	require.NoError(t, err)
	require.NotNil(t, progress.LatestCode)
	require.Equal(t, "clean solution", progress.LatestCode.Feedback)
}

func TestCodeReviewRejectionFallsBackToCodingStage(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	draft, err := f.service.SubmitAlgorithm(ctx, f.studentID, dto.AlgorithmSubmitRequest{
		ProgramID: f.programID,
		Content:   "prefix sums",
	})
	require.NoError(t, err)

	_, err = f.service.ReviewAlgorithm(ctx, draft.ID, dto.ReviewRequest{Decision: models.ReviewDecisionApproved})
	require.NoError(t, err)

	code, err := f.service.SubmitCode(ctx, f.studentID, dto.CodeSubmitRequest{
		ProgramID: f.programID,
		Code:      "for i in range(n): pass",
		Language:  "python",
	})
	require.NoError(t, err)

	_, err = f.service.ReviewCode(ctx, code.ID, dto.ReviewRequest{
		Decision: models.ReviewDecisionRejected,
		Feedback: strPtr("off by one"),
	})
	require.NoError(t, err)

	// A rejected code round returns the student to the coding stage.
	status, err := f.service.DeriveStatus(ctx, f.programID, f.studentID)
	require.NoError(t, err)
	require.Equal(t, models.ProgressCodingStage, status)

	progress, err := f.service.PairProgress(ctx, f.programID, f.studentID)
	require.NoError(t, err)
	require.NotNil(t, progress.LatestCode)
	require.Equal(t, models.ReviewStatusRejected, progress.LatestCode.Status)
	require.Equal(t, "off by one", progress.LatestCode.Feedback)
}

func TestListAlgorithmSubmissionsFiltersByStatus(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	first, err := f.service.SubmitAlgorithm(ctx, f.studentID, dto.AlgorithmSubmitRequest{
		ProgramID: f.programID,
		Content:   "draft one",
	})
	require.NoError(t, err)

	_, err = f.service.ReviewAlgorithm(ctx, first.ID, dto.ReviewRequest{Decision: models.ReviewDecisionRejected})
	require.NoError(t, err)

	_, err = f.service.SubmitAlgorithm(ctx, f.studentID, dto.AlgorithmSubmitRequest{
		ProgramID: f.programID,
		Content:   "draft two",
	})
	require.NoError(t, err)

	pending := models.ReviewStatusPending
	listed, err := f.service.ListAlgorithmSubmissions(ctx, dto.SubmissionFilter{
		ProgramID: &f.programID,
		Status:    &pending,
	})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "draft two", listed[0].Content)
}
