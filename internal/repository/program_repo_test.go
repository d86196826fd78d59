package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/algolab-dev/labrec-api/internal/models"
)

func TestProgramListSearchAndPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgramRepository(db)

	base := time.Now().Add(-time.Hour)
	programs := []models.Program{
		{Title: "Binary Search", Description: "Find values fast", Status: models.ProgramStatusActive, CreatedBy: uuid.NewString(), CreatedAt: base},
		{Title: "Linked Lists", Description: "Pointer practice", Status: models.ProgramStatusActive, CreatedBy: uuid.NewString(), CreatedAt: base.Add(time.Minute)},
		{Title: "Graph Search", Description: "BFS and DFS", Status: models.ProgramStatusActive, CreatedBy: uuid.NewString(), CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range programs {
		require.NoError(t, repo.Create(context.Background(), &programs[i]))
	}

	listed, total, err := repo.List(context.Background(), ProgramFilter{Search: "search"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, listed, 2)
	require.Equal(t, "Graph Search", listed[0].Title, "expected newest first by default")

	listed, total, err = repo.List(context.Background(), ProgramFilter{PageSize: 2, Page: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, listed, 1)
}

func TestProgramListSortsByTitle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgramRepository(db)

	for _, title := range []string{"Zig Zag", "Arrays"} {
		program := models.Program{Title: title, Status: models.ProgramStatusActive, CreatedBy: uuid.NewString()}
		require.NoError(t, repo.Create(context.Background(), &program))
	}

	listed, _, err := repo.List(context.Background(), ProgramFilter{Sort: "title"})
	require.NoError(t, err)
	require.Equal(t, "Arrays", listed[0].Title)

	listed, _, err = repo.List(context.Background(), ProgramFilter{Sort: "-title"})
	require.NoError(t, err)
	require.Equal(t, "Zig Zag", listed[0].Title)
}

func TestProgramListFiltersByClassroom(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgramRepository(db)

	classroomID := uuid.NewString()
	inClass := models.Program{Title: "Class Program", Status: models.ProgramStatusActive, ClassroomID: &classroomID, CreatedBy: uuid.NewString()}
	loose := models.Program{Title: "Open Program", Status: models.ProgramStatusActive, CreatedBy: uuid.NewString()}
	require.NoError(t, repo.Create(context.Background(), &inClass))
	require.NoError(t, repo.Create(context.Background(), &loose))

	listed, total, err := repo.List(context.Background(), ProgramFilter{ClassroomID: &classroomID})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Class Program", listed[0].Title)
}

func TestProgramCreateAssignsID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgramRepository(db)

	program := models.Program{Title: "Stacks", Status: models.ProgramStatusActive, CreatedBy: uuid.NewString()}
	require.NoError(t, repo.Create(context.Background(), &program))
	require.NotEmpty(t, program.ID)

	loaded, err := repo.GetByID(context.Background(), program.ID)
	require.NoError(t, err)
	require.Equal(t, "Stacks", loaded.Title)
}
