package logic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"project/backend/models"
	"project/backend/utils"
)

// setupTestDB opens a fresh in-memory database per test. The DSN is keyed by
// the test name so parallel tests never share state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.MigrateDB(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := models.User{Name: name, Email: email}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// createTestCourse goes through CreateCourse so the owner membership and
// settings rows exist, as they would in production.
func createTestCourse(t *testing.T, db *gorm.DB, owner *models.User, settings CourseSettingsInput) (*models.Course, *models.CourseMembership) {
	t.Helper()
	course, membership, err := CreateCourse(db, owner, "Test Course", "", true, settings)
	require.NoError(t, err)
	return course, membership
}

func addTestMember(t *testing.T, db *gorm.DB, course *models.Course, user *models.User, role models.Role) *models.CourseMembership {
	t.Helper()
	membership, err := CreateMembership(db, course, user.ID, role)
	require.NoError(t, err)
	return membership
}
