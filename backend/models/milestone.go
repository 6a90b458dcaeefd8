package models

import (
	"time"

	"gorm.io/gorm"
)

type CourseMilestone struct {
	gorm.Model
	CourseID      uint
	Name          string `gorm:"not null"`
	Description   string
	StartDateTime time.Time
	EndDateTime   *time.Time // nil means open-ended
	IsPublished   bool
}

// CourseMilestoneTemplate is a form definition attached to a course. Its
// FormFieldData array defines the fields a submission's response data must
// align with positionally.
type CourseMilestoneTemplate struct {
	gorm.Model
	CourseID       uint
	Name           string `gorm:"not null"`
	Description    string
	SubmissionType string
	IsPublished    bool
	FormFieldData  JSONList
}
