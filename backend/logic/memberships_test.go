package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project/backend/models"
)

func TestCreateCoursePinsOwnerMembership(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "Alice", "alice@example.com")

	course, membership := createTestCourse(t, db, owner, CourseSettingsInput{})

	assert.Equal(t, owner.ID, course.OwnerID)
	assert.Equal(t, models.RoleCoOwner, membership.Role)

	// an all-default settings input must still produce exactly one row
	var settingsRows int64
	require.NoError(t, db.Model(&models.CourseSettings{}).
		Where("course_id = ?", course.ID).Count(&settingsRows).Error)
	assert.EqualValues(t, 1, settingsRows)
}

func TestCreateMembership(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "Alice", "alice@example.com")
	course, _ := createTestCourse(t, db, owner, CourseSettingsInput{})
	student := createTestUser(t, db, "Bob", "bob@example.com")

	membership, err := CreateMembership(db, course, student.ID, models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, student.ID, membership.UserID)
	assert.Equal(t, "Bob", membership.User.Name)

	_, err = CreateMembership(db, course, student.ID, models.RoleStudent)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = CreateMembership(db, course, 9999, models.RoleStudent)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOwnerAndSelfMembershipsProtected(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "Alice", "alice@example.com")
	course, ownerMembership := createTestCourse(t, db, owner, CourseSettingsInput{})

	coOwner := createTestUser(t, db, "Carol", "carol@example.com")
	coOwnerMembership := addTestMember(t, db, course, coOwner, models.RoleCoOwner)

	// the owner's membership can be touched by nobody, not even another co-owner
	err := UpdateMembershipRole(db, course, coOwnerMembership, ownerMembership, models.RoleStudent)
	assert.ErrorIs(t, err, ErrPolicyViolation)
	err = DeleteMembership(db, course, coOwnerMembership, ownerMembership)
	assert.ErrorIs(t, err, ErrPolicyViolation)

	// nobody edits their own membership either
	err = UpdateMembershipRole(db, course, coOwnerMembership, coOwnerMembership, models.RoleStudent)
	assert.ErrorIs(t, err, ErrPolicyViolation)
	err = DeleteMembership(db, course, coOwnerMembership, coOwnerMembership)
	assert.ErrorIs(t, err, ErrPolicyViolation)
}

func TestUpdateMembershipRole(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "Alice", "alice@example.com")
	course, ownerMembership := createTestCourse(t, db, owner, CourseSettingsInput{})
	student := createTestUser(t, db, "Bob", "bob@example.com")
	target := addTestMember(t, db, course, student, models.RoleStudent)

	require.NoError(t, UpdateMembershipRole(db, course, ownerMembership, target, models.RoleInstructor))

	var reloaded models.CourseMembership
	require.NoError(t, db.First(&reloaded, target.ID).Error)
	assert.Equal(t, models.RoleInstructor, reloaded.Role)
}

func TestDeleteMembershipDropsGroupAssignment(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "Alice", "alice@example.com")
	course, ownerMembership := createTestCourse(t, db, owner, CourseSettingsInput{})
	student := createTestUser(t, db, "Bob", "bob@example.com")
	target := addTestMember(t, db, course, student, models.RoleStudent)

	group, err := CreateGroup(db, course, "Team 1")
	require.NoError(t, err)
	require.NoError(t, AddGroupMember(db, group, target))

	require.NoError(t, DeleteMembership(db, course, ownerMembership, target))

	var count int64
	require.NoError(t, db.Model(&models.CourseGroupMember{}).
		Where("membership_id = ?", target.ID).Count(&count).Error)
	assert.Zero(t, count)

	// a removed user can be added back
	_, err = CreateMembership(db, course, student.ID, models.RoleStudent)
	assert.NoError(t, err)
}

func TestBatchCreateMembershipsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "Alice", "alice@example.com")
	course, _ := createTestCourse(t, db, owner, CourseSettingsInput{})

	existing := createTestUser(t, db, "Bob", "bob@example.com")
	instructorMembership := addTestMember(t, db, course, existing, models.RoleInstructor)

	data := []MemberCreationData{
		{Email: "bob@example.com", Name: "Bob"},
		{Email: "dora@example.com", Name: "Dora"},
		{Email: "dora@example.com", Name: "Dora Again"},
	}

	result, err := BatchCreateMemberships(db, course, data)
	require.NoError(t, err)
	assert.Len(t, result, 2)

	// the pre-existing membership keeps its role
	var reloaded models.CourseMembership
	require.NoError(t, db.First(&reloaded, instructorMembership.ID).Error)
	assert.Equal(t, models.RoleInstructor, reloaded.Role)

	// the unknown email got a passwordless account
	var dora models.User
	require.NoError(t, db.Where("email = ?", "dora@example.com").First(&dora).Error)
	assert.Equal(t, "Dora", dora.Name)
	assert.Empty(t, dora.PasswordHash)

	// a second identical import changes nothing
	again, err := BatchCreateMemberships(db, course, data)
	require.NoError(t, err)
	assert.Len(t, again, 2)

	var total int64
	require.NoError(t, db.Model(&models.CourseMembership{}).
		Where("course_id = ?", course.ID).Count(&total).Error)
	assert.EqualValues(t, 3, total) // owner + bob + dora
}
