package models

import (
	"fmt"
	"time"
)

// Role is the ordered privilege level of a course membership.
type Role int

const (
	RoleStudent Role = iota
	RoleInstructor
	RoleCoOwner
)

func (r Role) HasAtLeast(required Role) bool {
	return r >= required
}

func (r Role) IsExactly(required Role) bool {
	return r == required
}

// IsStaff reports whether the role is INSTRUCTOR or above.
func (r Role) IsStaff() bool {
	return r >= RoleInstructor
}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "STUDENT"
	case RoleInstructor:
		return "INSTRUCTOR"
	case RoleCoOwner:
		return "CO-OWNER"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func ParseRole(s string) (Role, error) {
	switch s {
	case "STUDENT":
		return RoleStudent, nil
	case "INSTRUCTOR":
		return RoleInstructor, nil
	case "CO-OWNER":
		return RoleCoOwner, nil
	default:
		return 0, fmt.Errorf("invalid role %q", s)
	}
}

// CourseMembership links one user to one course with a role. The course
// owner's membership is always CO-OWNER. No DeletedAt: rows are removed for
// real so the unique index stays accurate when a user is re-added.
type CourseMembership struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	CourseID  uint `gorm:"uniqueIndex:idx_course_user"`
	UserID    uint `gorm:"uniqueIndex:idx_course_user"`
	User      User
	Role      Role `gorm:"default:0"`
}
