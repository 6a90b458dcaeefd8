package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentsOnlySeePublishedCourses(t *testing.T) {
	app := setupTestApp(t)

	ownerToken, _ := registerUser(t, app, "Alice", "alice@example.com")
	courseID := createCourse(t, app, ownerToken, fiber.Map{
		"name":         "Hidden Course",
		"is_published": false,
	})

	studentToken, studentID := registerUser(t, app, "Bob", "bob@example.com")
	studentMembership := addMember(t, app, ownerToken, courseID, studentID, "STUDENT")

	// the owner sees the unpublished course, the student does not
	resp := apiRequest(t, app, fiber.MethodGet, "/api/courses", ownerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	owned := decodeList(t, resp)
	require.Len(t, owned, 1)
	assert.Equal(t, "CO-OWNER", owned[0].(map[string]interface{})["role"])

	resp = apiRequest(t, app, fiber.MethodGet, "/api/courses", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeList(t, resp))

	// instructors see it regardless of publication
	resp = apiRequest(t, app, fiber.MethodPatch,
		fmt.Sprintf("/api/courses/%d/memberships/%d", courseID, studentMembership),
		ownerToken, fiber.Map{"role": "INSTRUCTOR"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = apiRequest(t, app, fiber.MethodGet, "/api/courses", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, resp), 1)
}

// membershipID resolves a user's membership ID in a course via the listing
// endpoint.
func membershipID(t *testing.T, app *fiber.App, token string, courseID, userID uint) uint {
	t.Helper()

	resp := apiRequest(t, app, fiber.MethodGet,
		fmt.Sprintf("/api/courses/%d/memberships", courseID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, entry := range decodeList(t, resp) {
		membership := entry.(map[string]interface{})
		user := membership["user"].(map[string]interface{})
		if jsonID(t, user) == userID {
			return jsonID(t, membership)
		}
	}
	t.Fatalf("user %d has no membership in course %d", userID, courseID)
	return 0
}

func TestCourseAccessRequiresMembership(t *testing.T) {
	app := setupTestApp(t)

	ownerToken, _ := registerUser(t, app, "Alice", "alice@example.com")
	courseID := createCourse(t, app, ownerToken, fiber.Map{})

	outsiderToken, _ := registerUser(t, app, "Eve", "eve@example.com")

	resp := apiRequest(t, app, fiber.MethodGet,
		fmt.Sprintf("/api/courses/%d", courseID), outsiderToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMembershipEndpointsAreCoOwnerOnly(t *testing.T) {
	app := setupTestApp(t)

	ownerToken, _ := registerUser(t, app, "Alice", "alice@example.com")
	courseID := createCourse(t, app, ownerToken, fiber.Map{})

	studentToken, studentID := registerUser(t, app, "Bob", "bob@example.com")
	addMember(t, app, ownerToken, courseID, studentID, "STUDENT")

	_, otherID := registerUser(t, app, "Carol", "carol@example.com")
	resp := apiRequest(t, app, fiber.MethodPost,
		fmt.Sprintf("/api/courses/%d/memberships", courseID), studentToken, fiber.Map{
			"user_id": otherID,
			"role":    "STUDENT",
		})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestOwnerMembershipCannotBeEdited(t *testing.T) {
	app := setupTestApp(t)

	ownerToken, ownerID := registerUser(t, app, "Alice", "alice@example.com")
	courseID := createCourse(t, app, ownerToken, fiber.Map{})

	coOwnerToken, coOwnerID := registerUser(t, app, "Carol", "carol@example.com")
	addMember(t, app, ownerToken, courseID, coOwnerID, "CO-OWNER")

	ownerMembership := membershipID(t, app, ownerToken, courseID, ownerID)

	resp := apiRequest(t, app, fiber.MethodPatch,
		fmt.Sprintf("/api/courses/%d/memberships/%d", courseID, ownerMembership),
		coOwnerToken, fiber.Map{"role": "STUDENT"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = apiRequest(t, app, fiber.MethodDelete,
		fmt.Sprintf("/api/courses/%d/memberships/%d", courseID, ownerMembership),
		coOwnerToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestOnlyOwnerCanDeleteCourse(t *testing.T) {
	app := setupTestApp(t)

	ownerToken, _ := registerUser(t, app, "Alice", "alice@example.com")
	courseID := createCourse(t, app, ownerToken, fiber.Map{})

	coOwnerToken, coOwnerID := registerUser(t, app, "Carol", "carol@example.com")
	addMember(t, app, ownerToken, courseID, coOwnerID, "CO-OWNER")

	resp := apiRequest(t, app, fiber.MethodDelete,
		fmt.Sprintf("/api/courses/%d", courseID), coOwnerToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = apiRequest(t, app, fiber.MethodDelete,
		fmt.Sprintf("/api/courses/%d", courseID), ownerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = apiRequest(t, app, fiber.MethodGet,
		fmt.Sprintf("/api/courses/%d", courseID), ownerToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestOwnerHandoffEndpoint(t *testing.T) {
	app := setupTestApp(t)

	ownerToken, _ := registerUser(t, app, "Alice", "alice@example.com")
	courseID := createCourse(t, app, ownerToken, fiber.Map{"name": "Handoff"})

	coOwnerToken, coOwnerID := registerUser(t, app, "Carol", "carol@example.com")
	addMember(t, app, ownerToken, courseID, coOwnerID, "CO-OWNER")

	// a co-owner who is not the owner cannot hand the course off
	resp := apiRequest(t, app, fiber.MethodPut,
		fmt.Sprintf("/api/courses/%d", courseID), coOwnerToken, fiber.Map{
			"name":         "Handoff",
			"is_published": true,
			"owner_id":     coOwnerID,
		})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = apiRequest(t, app, fiber.MethodPut,
		fmt.Sprintf("/api/courses/%d", courseID), ownerToken, fiber.Map{
			"name":         "Handoff",
			"is_published": true,
			"owner_id":     coOwnerID,
		})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeMap(t, resp)
	owner := data["owner"].(map[string]interface{})
	assert.Equal(t, coOwnerID, jsonID(t, owner))
}
