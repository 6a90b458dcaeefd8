package models

import "time"

// CourseGroup and its member rows are removed for real on delete so the
// unique indexes stay accurate across leave/rejoin and rename cycles.
type CourseGroup struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	CourseID  uint   `gorm:"uniqueIndex:idx_course_group_name"`
	Name      string `gorm:"uniqueIndex:idx_course_group_name;not null"`
	Members   []CourseGroupMember
}

// CourseGroupMember assigns one course membership to one group. The unique
// index on MembershipID backs the at-most-one-group-per-membership invariant
// (memberships are course-scoped, so this is per course by construction).
type CourseGroupMember struct {
	ID            uint `gorm:"primarykey"`
	CreatedAt     time.Time
	CourseGroupID uint
	MembershipID  uint `gorm:"uniqueIndex"`
	Membership    CourseMembership
}
