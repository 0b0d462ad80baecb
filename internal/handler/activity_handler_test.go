package handler_test

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/aulamax/aulamax-api/internal/dto"
	"github.com/aulamax/aulamax-api/internal/models"
)

func TestActivityListAdminOnly(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(asUser(jsonRequest(t, "GET", "/api/v1/admin/activity", nil), 10, models.RoleProfessor))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestActivityListReturnsWorkflowEvents(t *testing.T) {
	app, db := setupApp(t)

	// Publishing through the API leaves an audit entry behind.
	createResp, err := app.Test(asUser(jsonRequest(t, "POST", "/api/v1/assessments", map[string]interface{}{
		"offering_id": 1,
		"title":       "Audited Assignment",
		"kind":        "file_assignment",
		"deadline":    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"total_marks": 10,
	}), 10, models.RoleProfessor))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, createResp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&count).Error)
	require.NotZero(t, count)

	listResp, err := app.Test(asUser(jsonRequest(t, "GET", "/api/v1/admin/activity", nil), 1, models.RoleAdmin))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var listed struct {
		Data []dto.ActivityResponse `json:"data"`
	}
	decodeResponse(t, listResp, &listed)
	require.NotEmpty(t, listed.Data)
}
