package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	OwnerID     uint
	Owner       User
	Name        string `gorm:"not null"`
	Description string
	IsPublished bool
	Settings    CourseSettings
}

// CourseSettings is the per-course policy block. It is created together with
// its course and only ever updated through the course update path.
type CourseSettings struct {
	gorm.Model
	CourseID                               uint `gorm:"uniqueIndex"`
	ShowGroupMembersNames                  bool
	AllowStudentsToCreateGroups            bool
	AllowStudentsToDeleteGroups            bool
	AllowStudentsToJoinGroups              bool
	AllowStudentsToLeaveGroups             bool
	AllowStudentsToModifyGroupName         bool
	AllowStudentsToAddOrRemoveGroupMembers bool
	MilestoneAlias                         string // stored lowercase, "" means default display name
}
