package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/constants"
)

func roleApp(handler fiber.Handler, role string) *fiber.App {
	app := fiber.New()
	app.Get("/guarded",
		func(c *fiber.Ctx) error {
			if role != "" {
				c.Locals("userRole", role)
			}
			return c.Next()
		},
		handler,
		func(c *fiber.Ctx) error { return c.SendString("ok") },
	)
	return app
}

func TestRoleMiddlewareWithCustomError(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		wantCode int
	}{
		{"staff passes", constants.RoleStaff, fiber.StatusOK},
		{"admin forbidden when not allowed", constants.RoleAdmin, fiber.StatusForbidden},
		{"hod forbidden", constants.RoleHod, fiber.StatusForbidden},
		{"missing role unauthorized", "", fiber.StatusUnauthorized},
	}
	// admin is not in the allowed list here on purpose
	guard := RoleMiddlewareWithCustomError(
		[]string{constants.RoleStaff}, constants.RoleErrorStaff("marksheet entry"))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := roleApp(guard, tt.role)
			resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	guard := RequireRoles(constants.AllRoles...)

	for _, role := range constants.AllRoles {
		app := roleApp(guard, role)
		resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, role)
	}

	app := roleApp(guard, "parent")
	resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
