package logic

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"project/backend/models"
)

// SubmissionInput is the writable part of a submission shared by create and
// update.
type SubmissionInput struct {
	GroupID          *uint
	Name             string
	Description      string
	IsDraft          bool
	SubmissionType   string
	FormResponseData models.JSONList
}

func courseGroup(db *gorm.DB, courseID, groupID uint) (*models.CourseGroup, error) {
	var group models.CourseGroup
	err := db.Where("id = ? AND course_id = ?", groupID, courseID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: group %d does not belong to this course", ErrBadRequest, groupID)
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func CreateSubmission(db *gorm.DB, course *models.Course, requester *models.CourseMembership, milestoneID, templateID uint, input SubmissionInput) (*models.CourseSubmission, error) {
	var milestone models.CourseMilestone
	err := db.Where("id = ? AND course_id = ?", milestoneID, course.ID).First(&milestone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: milestone %d does not belong to this course", ErrBadRequest, milestoneID)
	}
	if err != nil {
		return nil, err
	}

	var template models.CourseMilestoneTemplate
	err = db.Where("id = ? AND course_id = ?", templateID, course.ID).First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: template %d does not belong to this course", ErrBadRequest, templateID)
	}
	if err != nil {
		return nil, err
	}

	if input.GroupID != nil {
		if _, err := courseGroup(db, course.ID, *input.GroupID); err != nil {
			return nil, err
		}
	}

	submission := models.CourseSubmission{
		CourseID:         course.ID,
		MilestoneID:      milestoneID,
		TemplateID:       templateID,
		GroupID:          input.GroupID,
		CreatorID:        requester.ID,
		EditorID:         requester.ID,
		Name:             input.Name,
		Description:      input.Description,
		IsDraft:          input.IsDraft,
		SubmissionType:   input.SubmissionType,
		FormResponseData: input.FormResponseData,
	}
	if err := db.Create(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// UpdateSubmission overwrites the writable fields and marks the requester as
// editor. The creator never changes. The caller must have passed
// CanUpdateSubmission already.
func UpdateSubmission(db *gorm.DB, course *models.Course, requester *models.CourseMembership, submission *models.CourseSubmission, input SubmissionInput) error {
	if input.GroupID != nil {
		if _, err := courseGroup(db, course.ID, *input.GroupID); err != nil {
			return err
		}
	}

	submission.GroupID = input.GroupID
	submission.Name = input.Name
	submission.Description = input.Description
	submission.IsDraft = input.IsDraft
	submission.SubmissionType = input.SubmissionType
	submission.FormResponseData = input.FormResponseData
	submission.EditorID = requester.ID

	return db.Omit("Milestone", "Template", "Group", "Creator", "Editor", "ViewableGroups").
		Save(submission).Error
}

func DeleteSubmission(db *gorm.DB, submission *models.CourseSubmission) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", submission.ID).
			Delete(&models.CourseSubmissionComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_id = ?", submission.ID).
			Delete(&models.CourseSubmissionViewableGroup{}).Error; err != nil {
			return err
		}
		return tx.Delete(submission).Error
	})
}

// deleteSubmissionsWhere removes the matching submissions together with their
// comments and whitelist rows. Used by the milestone, template, and course
// delete paths.
func deleteSubmissionsWhere(tx *gorm.DB, query string, arg interface{}) error {
	var submissionIDs []uint
	if err := tx.Model(&models.CourseSubmission{}).
		Where(query, arg).
		Pluck("id", &submissionIDs).Error; err != nil {
		return err
	}
	if len(submissionIDs) == 0 {
		return nil
	}

	if err := tx.Where("submission_id IN ?", submissionIDs).
		Delete(&models.CourseSubmissionComment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("submission_id IN ?", submissionIDs).
		Delete(&models.CourseSubmissionViewableGroup{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", submissionIDs).
		Delete(&models.CourseSubmission{}).Error
}

func CreateSubmissionComment(db *gorm.DB, submission *models.CourseSubmission, commenter *models.User, fieldIndex int, content string) (*models.CourseSubmissionComment, error) {
	if fieldIndex < 0 || fieldIndex >= len(submission.FormResponseData) {
		return nil, fmt.Errorf("%w: no such field", ErrBadRequest)
	}

	comment := models.CourseSubmissionComment{
		SubmissionID: submission.ID,
		FieldIndex:   fieldIndex,
		CommenterID:  commenter.ID,
		Content:      content,
	}
	if err := db.Create(&comment).Error; err != nil {
		return nil, err
	}
	comment.Commenter = *commenter
	return &comment, nil
}

func UpdateSubmissionComment(db *gorm.DB, comment *models.CourseSubmissionComment, content string) error {
	if comment.IsDeleted {
		return fmt.Errorf("%w: cannot update deleted comment", ErrBadRequest)
	}
	comment.Content = content
	return db.Omit("Commenter").Save(comment).Error
}

// DeleteSubmissionComment soft-deletes: content stays for audit. A second
// delete of the same comment is an error, not a no-op.
func DeleteSubmissionComment(db *gorm.DB, comment *models.CourseSubmissionComment) error {
	if comment.IsDeleted {
		return fmt.Errorf("%w: comment has already been deleted", ErrBadRequest)
	}
	comment.IsDeleted = true
	return db.Omit("Commenter").Save(comment).Error
}

// BatchReplaceViewableGroups atomically replaces the submission's whitelist.
// Every group must belong to the submission's course. Idempotent.
func BatchReplaceViewableGroups(db *gorm.DB, course *models.Course, submission *models.CourseSubmission, groupIDs []uint) ([]models.CourseSubmissionViewableGroup, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		target := make(map[uint]bool, len(groupIDs))
		for _, groupID := range groupIDs {
			var count int64
			if err := tx.Model(&models.CourseGroup{}).
				Where("id = ? AND course_id = ?", groupID, course.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: group %d does not belong to this course", ErrConflict, groupID)
			}
			target[groupID] = true
		}

		var current []models.CourseSubmissionViewableGroup
		if err := tx.Where("submission_id = ?", submission.ID).Find(&current).Error; err != nil {
			return err
		}
		for _, row := range current {
			if !target[row.GroupID] {
				if err := tx.Delete(&row).Error; err != nil {
					return err
				}
			} else {
				delete(target, row.GroupID)
			}
		}
		for groupID := range target {
			row := models.CourseSubmissionViewableGroup{SubmissionID: submission.ID, GroupID: groupID}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var result []models.CourseSubmissionViewableGroup
	err = db.Preload("Group").Where("submission_id = ?", submission.ID).Find(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmissionFilter narrows a course's submission listing.
type SubmissionFilter struct {
	MilestoneID *uint
	GroupID     *uint
	CreatorID   *uint
	EditorID    *uint
	TemplateID  *uint
}

// ListSubmissions returns the course's submissions matching the filter with
// the associations the visibility predicate needs.
func ListSubmissions(db *gorm.DB, course *models.Course, filter SubmissionFilter) ([]models.CourseSubmission, error) {
	query := db.Where("course_id = ?", course.ID).
		Preload("Group.Members").
		Preload("ViewableGroups.Group.Members").
		Preload("Creator.User").
		Preload("Editor.User")

	if filter.MilestoneID != nil {
		query = query.Where("milestone_id = ?", *filter.MilestoneID)
	}
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}
	if filter.EditorID != nil {
		query = query.Where("editor_id = ?", *filter.EditorID)
	}
	if filter.TemplateID != nil {
		query = query.Where("template_id = ?", *filter.TemplateID)
	}

	var submissions []models.CourseSubmission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}
