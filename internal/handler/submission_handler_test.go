package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/config"
	"github.com/algolab-dev/labrec-api/internal/dto"
	"github.com/algolab-dev/labrec-api/internal/handler"
	"github.com/algolab-dev/labrec-api/internal/models"
	"github.com/algolab-dev/labrec-api/internal/repository"
	"github.com/algolab-dev/labrec-api/internal/router"
	"github.com/algolab-dev/labrec-api/internal/service"
	"github.com/algolab-dev/labrec-api/pkg/pdfexport"
)

type workflowApp struct {
	app       *fiber.App
	programID string
	studentID string
	teacherID string
}

// The fake auth middleware trusts test headers so each request can pick its
// identity and role.
func setupWorkflowApp(t *testing.T) *workflowApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.Program{},
		&models.AlgorithmSubmission{},
		&models.CodeSubmission{},
		&models.Notification{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	programRepo := repository.NewProgramRepository(db)
	algorithmRepo := repository.NewAlgorithmSubmissionRepository(db)
	codeRepo := repository.NewCodeSubmissionRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, nil, "labrec.reviews", validate, logger)
	workflowService := service.NewWorkflowService(algorithmRepo, codeRepo, programRepo, validate, notificationService, logger)
	progressService := service.NewProgressService(programRepo, algorithmRepo, codeRepo, profileRepo, classroomRepo, nil, time.Minute, logger)
	recordService := service.NewRecordService(programRepo, algorithmRepo, codeRepo, pdfexport.NewRenderer(), logger)

	teacherID := uuid.NewString()
	program := models.Program{Title: "Binary Search", Status: models.ProgramStatusActive, CreatedBy: teacherID}
	require.NoError(t, programRepo.Create(context.Background(), &program))

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		SubmissionHandler: handler.NewSubmissionHandler(workflowService, logger),
		ProgressHandler:   handler.NewProgressHandler(workflowService, progressService, logger),
		RecordHandler:     handler.NewRecordHandler(recordService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			if userID := c.Get("X-Test-User"); userID != "" {
				c.Locals("user_id", userID)
			}
			if role := c.Get("X-Test-Role"); role != "" {
				c.Locals("user_role", role)
			}
			return c.Next()
		},
	})

	return &workflowApp{
		app:       app,
		programID: program.ID,
		studentID: uuid.NewString(),
		teacherID: teacherID,
	}
}

func (w *workflowApp) request(t *testing.T, method, path, userID, role string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Test-User", userID)
	req.Header.Set("X-Test-Role", role)

	resp, err := w.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success, envelope.Message)
	if target != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, target))
	}
}

func TestWorkflowOverHTTP(t *testing.T) {
	w := setupWorkflowApp(t)

	// Student submits an algorithm draft.
	resp := w.request(t, http.MethodPost, "/api/v1/submissions/algorithms", w.studentID, models.RoleStudent, dto.AlgorithmSubmitRequest{
		ProgramID: w.programID,
		Content:   "step1; step2",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var draft dto.AlgorithmSubmissionResponse
	decodeData(t, resp, &draft)
	require.Equal(t, models.ReviewStatusPending, draft.Status)

	// Students may not review.
	resp = w.request(t, http.MethodPatch, "/api/v1/submissions/algorithms/"+draft.ID+"/review", w.studentID, models.RoleStudent, dto.ReviewRequest{
		Decision: models.ReviewDecisionApproved,
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Teacher approves the draft.
	resp = w.request(t, http.MethodPatch, "/api/v1/submissions/algorithms/"+draft.ID+"/review", w.teacherID, models.RoleTeacher, dto.ReviewRequest{
		Decision: models.ReviewDecisionApproved,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Student enters the coding stage.
	resp = w.request(t, http.MethodPost, "/api/v1/submissions/code", w.studentID, models.RoleStudent, dto.CodeSubmitRequest{
		ProgramID: w.programID,
		Code:      "print(\"ok\")",
		Language:  "python",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var code dto.CodeSubmissionResponse
	decodeData(t, resp, &code)

	resp = w.request(t, http.MethodPatch, "/api/v1/submissions/code/"+code.ID+"/review", w.teacherID, models.RoleTeacher, dto.ReviewRequest{
		Decision: models.ReviewDecisionApproved,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The pair is now final.
	resp = w.request(t, http.MethodGet, "/api/v1/progress/pair/"+w.programID+"/"+w.studentID, w.studentID, models.RoleStudent, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var progress dto.PairProgressResponse
	decodeData(t, resp, &progress)
	require.Equal(t, models.ProgressFinalApproved, progress.Status)

	// And the record exports as a PDF download.
	resp = w.request(t, http.MethodGet, "/api/v1/records/"+w.programID+"/"+w.studentID+"/pdf", w.studentID, models.RoleStudent, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "digital-record-binary-search.pdf")

	document, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "%PDF", string(document[:4]))
}

func TestSubmitCodeBeforeApprovalOverHTTP(t *testing.T) {
	w := setupWorkflowApp(t)

	resp := w.request(t, http.MethodPost, "/api/v1/submissions/code", w.studentID, models.RoleStudent, dto.CodeSubmitRequest{
		ProgramID: w.programID,
		Code:      "print(1)",
		Language:  "python",
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSubmitAlgorithmValidationOverHTTP(t *testing.T) {
	w := setupWorkflowApp(t)

	resp := w.request(t, http.MethodPost, "/api/v1/submissions/algorithms", w.studentID, models.RoleStudent, map[string]string{
		"program_id": "not-a-uuid",
		"content":    "hello",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRecordNotReadyOverHTTP(t *testing.T) {
	w := setupWorkflowApp(t)

	resp := w.request(t, http.MethodGet, "/api/v1/records/"+w.programID+"/"+w.studentID, w.studentID, models.RoleStudent, nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
