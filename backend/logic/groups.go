package logic

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"project/backend/models"
)

// GroupAction is the closed set of operations a group patch request can carry.
type GroupAction string

const (
	GroupActionModify        GroupAction = "MODIFY"
	GroupActionJoin          GroupAction = "JOIN"
	GroupActionLeave         GroupAction = "LEAVE"
	GroupActionAdd           GroupAction = "ADD"
	GroupActionRemove        GroupAction = "REMOVE"
	GroupActionUpdateMembers GroupAction = "UPDATE_MEMBERS"
)

func ParseGroupAction(s string) (GroupAction, error) {
	switch GroupAction(s) {
	case GroupActionModify, GroupActionJoin, GroupActionLeave,
		GroupActionAdd, GroupActionRemove, GroupActionUpdateMembers:
		return GroupAction(s), nil
	default:
		return "", fmt.Errorf("%w: invalid group action %q", ErrBadRequest, s)
	}
}

func groupNameTaken(db *gorm.DB, courseID uint, name string, excludeGroupID uint) (bool, error) {
	var count int64
	err := db.Model(&models.CourseGroup{}).
		Where("course_id = ? AND name = ? AND id <> ?", courseID, name, excludeGroupID).
		Count(&count).Error
	return count > 0, err
}

func CreateGroup(db *gorm.DB, course *models.Course, name string) (*models.CourseGroup, error) {
	taken, err := groupNameTaken(db, course.ID, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: group name %q already used in this course", ErrConflict, name)
	}

	group := models.CourseGroup{CourseID: course.ID, Name: name}
	if err := db.Create(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func RenameGroup(db *gorm.DB, group *models.CourseGroup, name string) error {
	taken, err := groupNameTaken(db, group.CourseID, name, group.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: group name %q already used in this course", ErrConflict, name)
	}

	group.Name = name
	return db.Omit("Members").Save(group).Error
}

func DeleteGroup(db *gorm.DB, group *models.CourseGroup) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_group_id = ?", group.ID).
			Delete(&models.CourseGroupMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).
			Delete(&models.CourseSubmissionViewableGroup{}).Error; err != nil {
			return err
		}
		return tx.Delete(group).Error
	})
}

// currentAssignment returns the group member row for the membership, if any.
// Memberships are course-scoped so a single row covers the whole course.
func currentAssignment(db *gorm.DB, membershipID uint) (*models.CourseGroupMember, error) {
	var member models.CourseGroupMember
	err := db.Where("membership_id = ?", membershipID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// JoinGroup is the student self-service path; the same invariant violation
// that is a conflict for staff adds is a policy violation here.
func JoinGroup(db *gorm.DB, group *models.CourseGroup, membership *models.CourseMembership) error {
	existing, err := currentAssignment(db, membership.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: membership already belongs to a group", ErrPolicyViolation)
	}

	member := models.CourseGroupMember{CourseGroupID: group.ID, MembershipID: membership.ID}
	return db.Create(&member).Error
}

func LeaveGroup(db *gorm.DB, group *models.CourseGroup, membership *models.CourseMembership) error {
	existing, err := currentAssignment(db, membership.ID)
	if err != nil {
		return err
	}
	if existing == nil || existing.CourseGroupID != group.ID {
		return fmt.Errorf("%w: membership is not in this group", ErrPolicyViolation)
	}
	return db.Delete(existing).Error
}

func AddGroupMember(db *gorm.DB, group *models.CourseGroup, membership *models.CourseMembership) error {
	existing, err := currentAssignment(db, membership.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: membership already belongs to a group", ErrConflict)
	}

	member := models.CourseGroupMember{CourseGroupID: group.ID, MembershipID: membership.ID}
	return db.Create(&member).Error
}

func RemoveGroupMember(db *gorm.DB, group *models.CourseGroup, membership *models.CourseMembership) error {
	existing, err := currentAssignment(db, membership.ID)
	if err != nil {
		return err
	}
	if existing == nil || existing.CourseGroupID != group.ID {
		return fmt.Errorf("%w: membership is not in this group", ErrConflict)
	}
	return db.Delete(existing).Error
}

// BatchReplaceGroupMembers atomically replaces the group's roster with the
// memberships of the given users: unlisted members are removed, missing ones
// added. Calling it twice with the same set is a no-op the second time.
func BatchReplaceGroupMembers(db *gorm.DB, course *models.Course, group *models.CourseGroup, userIDs []uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var memberships []models.CourseMembership
		if len(userIDs) > 0 {
			if err := tx.Where("course_id = ? AND user_id IN ?", course.ID, userIDs).
				Find(&memberships).Error; err != nil {
				return err
			}
		}
		if len(memberships) != len(uniqueIDs(userIDs)) {
			return fmt.Errorf("%w: some users are not members of this course", ErrBadRequest)
		}

		target := make(map[uint]bool, len(memberships))
		for _, membership := range memberships {
			assignment, err := currentAssignment(tx, membership.ID)
			if err != nil {
				return err
			}
			if assignment != nil && assignment.CourseGroupID != group.ID {
				return fmt.Errorf("%w: user %d already belongs to another group", ErrConflict, membership.UserID)
			}
			target[membership.ID] = true
		}

		var current []models.CourseGroupMember
		if err := tx.Where("course_group_id = ?", group.ID).Find(&current).Error; err != nil {
			return err
		}

		for _, member := range current {
			if !target[member.MembershipID] {
				if err := tx.Delete(&member).Error; err != nil {
					return err
				}
			} else {
				delete(target, member.MembershipID)
			}
		}
		for membershipID := range target {
			member := models.CourseGroupMember{CourseGroupID: group.ID, MembershipID: membershipID}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
