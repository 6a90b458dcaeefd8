package logic

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"project/backend/models"
)

// CourseSettingsInput carries the per-course policy flags that travel with
// every course create/update request.
type CourseSettingsInput struct {
	ShowGroupMembersNames                  bool   `json:"show_group_members_names"`
	AllowStudentsToCreateGroups            bool   `json:"allow_students_to_create_groups"`
	AllowStudentsToDeleteGroups            bool   `json:"allow_students_to_delete_groups"`
	AllowStudentsToJoinGroups              bool   `json:"allow_students_to_join_groups"`
	AllowStudentsToLeaveGroups             bool   `json:"allow_students_to_leave_groups"`
	AllowStudentsToModifyGroupName         bool   `json:"allow_students_to_modify_group_name"`
	AllowStudentsToAddOrRemoveGroupMembers bool   `json:"allow_students_to_add_or_remove_group_members"`
	MilestoneAlias                         string `json:"milestone_alias" validate:"max=255"`
}

func (in CourseSettingsInput) apply(settings *models.CourseSettings) {
	settings.ShowGroupMembersNames = in.ShowGroupMembersNames
	settings.AllowStudentsToCreateGroups = in.AllowStudentsToCreateGroups
	settings.AllowStudentsToDeleteGroups = in.AllowStudentsToDeleteGroups
	settings.AllowStudentsToJoinGroups = in.AllowStudentsToJoinGroups
	settings.AllowStudentsToLeaveGroups = in.AllowStudentsToLeaveGroups
	settings.AllowStudentsToModifyGroupName = in.AllowStudentsToModifyGroupName
	settings.AllowStudentsToAddOrRemoveGroupMembers = in.AllowStudentsToAddOrRemoveGroupMembers
	settings.MilestoneAlias = strings.ToLower(in.MilestoneAlias)
}

// CreateCourse creates the course, its settings, and the owner's CO-OWNER
// membership in one transaction.
func CreateCourse(db *gorm.DB, owner *models.User, name, description string, isPublished bool, settings CourseSettingsInput) (*models.Course, *models.CourseMembership, error) {
	course := models.Course{
		OwnerID:     owner.ID,
		Owner:       *owner,
		Name:        name,
		Description: description,
		IsPublished: isPublished,
	}
	settings.apply(&course.Settings)

	membership := models.CourseMembership{UserID: owner.ID, Role: models.RoleCoOwner, User: *owner}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Owner", "Settings").Create(&course).Error; err != nil {
			return err
		}
		// created explicitly: gorm skips zero-value associations, and an
		// all-default settings block is exactly that
		course.Settings.CourseID = course.ID
		if err := tx.Create(&course.Settings).Error; err != nil {
			return err
		}
		membership.CourseID = course.ID
		return tx.Omit("User").Create(&membership).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &course, &membership, nil
}

// UpdateCourse updates the course and its settings together. A non-nil
// newOwnerID hands the course off; the new owner must already be a member and
// their membership is promoted to CO-OWNER.
func UpdateCourse(db *gorm.DB, course *models.Course, newOwnerID *uint, name, description string, isPublished bool, settings CourseSettingsInput) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if newOwnerID != nil && *newOwnerID != course.OwnerID {
			var ownerMembership models.CourseMembership
			err := tx.Preload("User").
				Where("course_id = ? AND user_id = ?", course.ID, *newOwnerID).
				First(&ownerMembership).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: new owner is not a member of this course", ErrBadRequest)
			}
			if err != nil {
				return err
			}

			course.OwnerID = ownerMembership.UserID
			course.Owner = ownerMembership.User

			if ownerMembership.Role != models.RoleCoOwner {
				ownerMembership.Role = models.RoleCoOwner
				if err := tx.Save(&ownerMembership).Error; err != nil {
					return err
				}
			}
		}

		course.Name = name
		course.Description = description
		course.IsPublished = isPublished
		settings.apply(&course.Settings)

		if err := tx.Omit("Owner", "Settings").Save(course).Error; err != nil {
			return err
		}
		return tx.Save(&course.Settings).Error
	})
}

// DeleteCourse removes the course and everything under it, dependents first,
// inside one transaction.
func DeleteCourse(db *gorm.DB, course *models.Course) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := deleteSubmissionsWhere(tx, "course_id = ?", course.ID); err != nil {
			return err
		}

		var groupIDs []uint
		if err := tx.Model(&models.CourseGroup{}).
			Where("course_id = ?", course.ID).
			Pluck("id", &groupIDs).Error; err != nil {
			return err
		}
		if len(groupIDs) > 0 {
			if err := tx.Where("course_group_id IN ?", groupIDs).
				Delete(&models.CourseGroupMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id = ?", course.ID).
				Delete(&models.CourseGroup{}).Error; err != nil {
				return err
			}
		}

		for _, model := range []interface{}{
			&models.CourseMilestoneTemplate{},
			&models.CourseMilestone{},
			&models.CourseMembership{},
			&models.CourseSettings{},
		} {
			if err := tx.Where("course_id = ?", course.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(course).Error
	})
}

func validateMilestoneWindow(start time.Time, end *time.Time) error {
	if end != nil && !start.Before(*end) {
		return fmt.Errorf("%w: start date/time must be before end date/time", ErrBadRequest)
	}
	return nil
}

func CreateMilestone(db *gorm.DB, course *models.Course, name, description string, start time.Time, end *time.Time, isPublished bool) (*models.CourseMilestone, error) {
	if err := validateMilestoneWindow(start, end); err != nil {
		return nil, err
	}
	milestone := models.CourseMilestone{
		CourseID:      course.ID,
		Name:          name,
		Description:   description,
		StartDateTime: start,
		EndDateTime:   end,
		IsPublished:   isPublished,
	}
	if err := db.Create(&milestone).Error; err != nil {
		return nil, err
	}
	return &milestone, nil
}

// DeleteMilestone removes the milestone and every submission filed under it,
// comments and whitelist rows included.
func DeleteMilestone(db *gorm.DB, milestone *models.CourseMilestone) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := deleteSubmissionsWhere(tx, "milestone_id = ?", milestone.ID); err != nil {
			return err
		}
		return tx.Delete(milestone).Error
	})
}

// DeleteTemplate removes the template and every submission created from it.
func DeleteTemplate(db *gorm.DB, template *models.CourseMilestoneTemplate) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := deleteSubmissionsWhere(tx, "template_id = ?", template.ID); err != nil {
			return err
		}
		return tx.Delete(template).Error
	})
}

func UpdateMilestone(db *gorm.DB, milestone *models.CourseMilestone, name, description string, start time.Time, end *time.Time, isPublished bool) error {
	if err := validateMilestoneWindow(start, end); err != nil {
		return err
	}
	milestone.Name = name
	milestone.Description = description
	milestone.StartDateTime = start
	milestone.EndDateTime = end
	milestone.IsPublished = isPublished
	return db.Save(milestone).Error
}
