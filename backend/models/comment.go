package models

import "gorm.io/gorm"

// CourseSubmissionComment is anchored to one field of a submission's response
// data. Deletion is a soft flag; the record stays for audit.
type CourseSubmissionComment struct {
	gorm.Model
	SubmissionID uint
	FieldIndex   int // zero-based index into the submission's form response data
	CommenterID  uint
	Commenter    User `gorm:"foreignKey:CommenterID"`
	Content      string
	IsDeleted    bool
}
