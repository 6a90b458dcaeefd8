package controllers_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submissionSetup struct {
	app          *fiber.App
	ownerToken   string
	studentToken string
	courseID     uint
	submissionID uint
}

// newSubmissionSetup builds a published course with a milestone, a two-field
// template, and a draft submission created by the student.
func newSubmissionSetup(t *testing.T) submissionSetup {
	t.Helper()
	app := setupTestApp(t)

	ownerToken, _ := registerUser(t, app, "Alice", "alice@example.com")
	courseID := createCourse(t, app, ownerToken, fiber.Map{})

	studentToken, studentID := registerUser(t, app, "Bob", "bob@example.com")
	addMember(t, app, ownerToken, courseID, studentID, "STUDENT")

	resp := apiRequest(t, app, fiber.MethodPost,
		fmt.Sprintf("/api/courses/%d/milestones", courseID), ownerToken, fiber.Map{
			"name":            "Sprint 1",
			"start_date_time": time.Now().UnixMilli(),
			"is_published":    true,
		})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	milestoneID := jsonID(t, decodeMap(t, resp))

	resp = apiRequest(t, app, fiber.MethodPost,
		fmt.Sprintf("/api/courses/%d/templates", courseID), ownerToken, fiber.Map{
			"name":            "Report",
			"submission_type": "GROUP",
			"is_published":    true,
			"form_field_data": []fiber.Map{
				{"type": "TEXT", "label": "Summary"},
				{"type": "TEXT", "label": "Details"},
			},
		})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	templateID := jsonID(t, decodeMap(t, resp))

	resp = apiRequest(t, app, fiber.MethodPost,
		fmt.Sprintf("/api/courses/%d/submissions", courseID), studentToken, fiber.Map{
			"milestone_id":    milestoneID,
			"template_id":     templateID,
			"name":            "Week 1 report",
			"is_draft":        true,
			"submission_type": "GROUP",
			"form_response_data": []fiber.Map{
				{"answer": "did things"},
				{"answer": "more things"},
			},
		})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	submissionID := jsonID(t, decodeMap(t, resp))

	return submissionSetup{
		app:          app,
		ownerToken:   ownerToken,
		studentToken: studentToken,
		courseID:     courseID,
		submissionID: submissionID,
	}
}

func (s submissionSetup) commentsPath(suffix string) string {
	return fmt.Sprintf("/api/courses/%d/submissions/%d/comments%s", s.courseID, s.submissionID, suffix)
}

func TestCommentLifecycle(t *testing.T) {
	s := newSubmissionSetup(t)

	resp := apiRequest(t, s.app, fiber.MethodPost, s.commentsPath("/1"), s.ownerToken, fiber.Map{
		"content": "needs more detail",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	comment := decodeMap(t, resp)
	commentID := jsonID(t, comment)
	assert.EqualValues(t, 1, comment["field_index"])

	// counts line up with the form response fields
	resp = apiRequest(t, s.app, fiber.MethodGet, s.commentsPath(""), s.studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	counts := decodeList(t, resp)
	require.Len(t, counts, 2)
	assert.EqualValues(t, 0, counts[0])
	assert.EqualValues(t, 1, counts[1])

	resp = apiRequest(t, s.app, fiber.MethodGet, s.commentsPath("/1"), s.studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, resp), 1)

	commentPath := s.commentsPath(fmt.Sprintf("/1/%d", commentID))

	// only the author or staff may edit
	resp = apiRequest(t, s.app, fiber.MethodPatch, commentPath, s.studentToken, fiber.Map{
		"content": "actually it is fine",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = apiRequest(t, s.app, fiber.MethodPatch, commentPath, s.ownerToken, fiber.Map{
		"content": "needs much more detail",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "needs much more detail", decodeMap(t, resp)["content"])

	// deleting twice is an error, not a no-op
	resp = apiRequest(t, s.app, fiber.MethodDelete, commentPath, s.ownerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeMap(t, resp)["is_deleted"])

	resp = apiRequest(t, s.app, fiber.MethodDelete, commentPath, s.ownerToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = apiRequest(t, s.app, fiber.MethodPatch, commentPath, s.ownerToken, fiber.Map{
		"content": "too late",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCommentFieldIndexOutOfRange(t *testing.T) {
	s := newSubmissionSetup(t)

	resp := apiRequest(t, s.app, fiber.MethodPost, s.commentsPath("/5"), s.ownerToken, fiber.Map{
		"content": "no such field",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = apiRequest(t, s.app, fiber.MethodGet, s.commentsPath("/5"), s.ownerToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmissionVisibilityAndDraftGate(t *testing.T) {
	s := newSubmissionSetup(t)

	// an unrelated student cannot see or comment on the submission
	outsiderToken, outsiderID := registerUser(t, s.app, "Eve", "eve@example.com")
	addMember(t, s.app, s.ownerToken, s.courseID, outsiderID, "STUDENT")

	submissionPath := fmt.Sprintf("/api/courses/%d/submissions/%d", s.courseID, s.submissionID)

	resp := apiRequest(t, s.app, fiber.MethodGet, submissionPath, outsiderToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = apiRequest(t, s.app, fiber.MethodPost, s.commentsPath("/0"), outsiderToken, fiber.Map{
		"content": "let me in",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// finalizing the submission locks it for the student
	resp = apiRequest(t, s.app, fiber.MethodPut, submissionPath, s.studentToken, fiber.Map{
		"name":            "Week 1 report",
		"is_draft":        false,
		"submission_type": "GROUP",
		"form_response_data": []fiber.Map{
			{"answer": "did things"},
			{"answer": "more things"},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = apiRequest(t, s.app, fiber.MethodPut, submissionPath, s.studentToken, fiber.Map{
		"name":            "Week 1 report, revised",
		"is_draft":        true,
		"submission_type": "GROUP",
		"form_response_data": []fiber.Map{
			{"answer": "did things"},
			{"answer": "more things"},
		},
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// staff can still edit and reopen it
	resp = apiRequest(t, s.app, fiber.MethodPut, submissionPath, s.ownerToken, fiber.Map{
		"name":            "Week 1 report",
		"is_draft":        true,
		"submission_type": "GROUP",
		"form_response_data": []fiber.Map{
			{"answer": "did things"},
			{"answer": "more things"},
		},
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestViewableGroupsWhitelist(t *testing.T) {
	s := newSubmissionSetup(t)

	groupID := createGroup(t, s.app, s.ownerToken, s.courseID, "Reviewers")

	// whitelisting is staff-only
	path := fmt.Sprintf("/api/courses/%d/submissions/%d/viewable-groups", s.courseID, s.submissionID)
	resp := apiRequest(t, s.app, fiber.MethodPut, path, s.studentToken, fiber.Map{
		"group_ids": []uint{groupID},
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = apiRequest(t, s.app, fiber.MethodPut, path, s.ownerToken, fiber.Map{
		"group_ids": []uint{groupID},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = apiRequest(t, s.app, fiber.MethodGet, path, s.ownerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, resp), 1)

	// a member of the whitelisted group now sees the submission
	reviewerToken, reviewerID := registerUser(t, s.app, "Rita", "rita@example.com")
	addMember(t, s.app, s.ownerToken, s.courseID, reviewerID, "STUDENT")
	resp = apiRequest(t, s.app, fiber.MethodPatch,
		fmt.Sprintf("/api/courses/%d/groups/%d", s.courseID, groupID), s.ownerToken, fiber.Map{
			"action":  "ADD",
			"payload": fiber.Map{"user_id": reviewerID},
		})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = apiRequest(t, s.app, fiber.MethodGet,
		fmt.Sprintf("/api/courses/%d/submissions/%d", s.courseID, s.submissionID),
		reviewerToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
