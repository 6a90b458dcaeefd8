package logic

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"project/backend/models"
)

func CreateMembership(db *gorm.DB, course *models.Course, userID uint, role models.Role) (*models.CourseMembership, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	var count int64
	if err := db.Model(&models.CourseMembership{}).
		Where("course_id = ? AND user_id = ?", course.ID, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: user is already a member of this course", ErrConflict)
	}

	membership := models.CourseMembership{CourseID: course.ID, UserID: userID, Role: role}
	if err := db.Create(&membership).Error; err != nil {
		return nil, err
	}
	membership.User = user
	return &membership, nil
}

// membershipProtected blocks edits to the course owner's membership (its role
// is pinned to CO-OWNER) and to the requester's own membership.
func membershipProtected(course *models.Course, requester, target *models.CourseMembership) error {
	if course.OwnerID == target.UserID {
		return fmt.Errorf("%w: cannot modify the course owner's membership", ErrPolicyViolation)
	}
	if requester.ID == target.ID {
		return fmt.Errorf("%w: cannot modify own membership", ErrPolicyViolation)
	}
	return nil
}

func UpdateMembershipRole(db *gorm.DB, course *models.Course, requester, target *models.CourseMembership, role models.Role) error {
	if err := membershipProtected(course, requester, target); err != nil {
		return err
	}
	target.Role = role
	return db.Omit("User").Save(target).Error
}

func DeleteMembership(db *gorm.DB, course *models.Course, requester, target *models.CourseMembership) error {
	if err := membershipProtected(course, requester, target); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		// drop any group assignment before the membership itself
		if err := tx.Where("membership_id = ?", target.ID).
			Delete(&models.CourseGroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(target).Error
	})
}

// MemberCreationData is one email+name pair of a batch membership import.
type MemberCreationData struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=255"`
}

// BatchCreateMemberships resolves users by email, creates the missing ones,
// then creates one membership per user, leaving pre-existing memberships
// untouched. The whole import is one transaction.
func BatchCreateMemberships(db *gorm.DB, course *models.Course, data []MemberCreationData) ([]models.CourseMembership, error) {
	emails := make([]string, 0, len(data))
	byEmail := make(map[string]MemberCreationData, len(data))
	for _, entry := range data {
		// first occurrence of an email wins
		if _, ok := byEmail[entry.Email]; !ok {
			emails = append(emails, entry.Email)
			byEmail[entry.Email] = entry
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing []models.User
		if err := tx.Where("email IN ?", emails).Find(&existing).Error; err != nil {
			return err
		}

		existingEmails := make(map[string]bool, len(existing))
		for _, user := range existing {
			existingEmails[user.Email] = true
		}

		var newUsers []models.User
		for _, email := range emails {
			if !existingEmails[email] {
				newUsers = append(newUsers, models.User{Email: email, Name: byEmail[email].Name})
			}
		}
		if len(newUsers) > 0 {
			if err := tx.Create(&newUsers).Error; err != nil {
				return err
			}
		}

		allUsers := append(existing, newUsers...)
		memberships := make([]models.CourseMembership, 0, len(allUsers))
		for _, user := range allUsers {
			memberships = append(memberships, models.CourseMembership{
				CourseID: course.ID,
				UserID:   user.ID,
				Role:     models.RoleStudent,
			})
		}
		if len(memberships) == 0 {
			return nil
		}
		// idempotent upsert: existing (course, user) rows stay as they are
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&memberships).Error
	})
	if err != nil {
		return nil, err
	}

	var result []models.CourseMembership
	err = db.Preload("User").
		Joins("JOIN users ON users.id = course_memberships.user_id").
		Where("course_memberships.course_id = ? AND users.email IN ?", course.ID, emails).
		Find(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}
