package models

import (
	"time"

	"gorm.io/gorm"
)

type CourseSubmission struct {
	gorm.Model
	CourseID         uint
	MilestoneID      uint
	Milestone        CourseMilestone
	TemplateID       uint
	Template         CourseMilestoneTemplate
	GroupID          *uint
	Group            *CourseGroup
	CreatorID        uint // membership of the creator, never changes
	Creator          CourseMembership
	EditorID         uint // membership of the last editor
	Editor           CourseMembership
	Name             string `gorm:"not null"`
	Description      string
	IsDraft          bool
	SubmissionType   string
	FormResponseData JSONList // aligned positionally with the template's form fields
	ViewableGroups   []CourseSubmissionViewableGroup `gorm:"foreignKey:SubmissionID"`
}

// CourseSubmissionViewableGroup whitelists one group into a submission beyond
// the default visibility rules. Rows are replaced in batch and removed for
// real so the unique index stays accurate across replacements.
type CourseSubmissionViewableGroup struct {
	ID           uint `gorm:"primarykey"`
	CreatedAt    time.Time
	SubmissionID uint `gorm:"uniqueIndex:idx_submission_viewable_group;column:submission_id"`
	GroupID      uint `gorm:"uniqueIndex:idx_submission_viewable_group"`
	Group        CourseGroup
}
