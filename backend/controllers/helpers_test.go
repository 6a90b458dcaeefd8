package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/routes"
	"project/backend/utils"
)

// setupTestApp wires the full route table against a fresh in-memory database.
func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.MigrateDB(db))

	cfg := &config.Config{JWTSecret: "test-secret"}
	app := fiber.New()
	routes.SetupRoutes(app, db, cfg)
	return app
}

func apiRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeMap(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	return data
}

func decodeList(t *testing.T, resp *http.Response) []interface{} {
	t.Helper()
	var data []interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	return data
}

func jsonID(t *testing.T, data map[string]interface{}) uint {
	t.Helper()
	id, ok := data["id"].(float64)
	require.True(t, ok, "response has no numeric id: %v", data)
	return uint(id)
}

// registerUser creates an account through the public endpoint and returns its
// token and user ID.
func registerUser(t *testing.T, app *fiber.App, name, email string) (string, uint) {
	t.Helper()

	resp := apiRequest(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeMap(t, resp)
	token, ok := data["token"].(string)
	require.True(t, ok)
	user, ok := data["user"].(map[string]interface{})
	require.True(t, ok)
	return token, jsonID(t, user)
}

// createCourse posts a course with the given policy overrides and returns its
// ID.
func createCourse(t *testing.T, app *fiber.App, token string, body fiber.Map) uint {
	t.Helper()

	if _, ok := body["name"]; !ok {
		body["name"] = "Test Course"
	}
	if _, ok := body["is_published"]; !ok {
		body["is_published"] = true
	}
	resp := apiRequest(t, app, fiber.MethodPost, "/api/courses", token, body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return jsonID(t, decodeMap(t, resp))
}

// addMember enrolls an existing user into a course using the owner's token.
func addMember(t *testing.T, app *fiber.App, ownerToken string, courseID, userID uint, role string) uint {
	t.Helper()

	resp := apiRequest(t, app, fiber.MethodPost,
		fmt.Sprintf("/api/courses/%d/memberships", courseID), ownerToken, fiber.Map{
			"user_id": userID,
			"role":    role,
		})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return jsonID(t, decodeMap(t, resp))
}
