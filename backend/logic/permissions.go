package logic

import "project/backend/models"

// Authorization predicates. All of them are pure: they only read the models
// they are handed (with associations already loaded) and never touch the
// database, so callers must resolve entities first.

func CanCreateGroup(course *models.Course, membership *models.CourseMembership) bool {
	return membership.Role.IsStaff() || course.Settings.AllowStudentsToCreateGroups
}

func CanUpdateGroup(course *models.Course, membership *models.CourseMembership, group *models.CourseGroup, action GroupAction) bool {
	if membership.Role.IsStaff() {
		return true
	}

	settings := course.Settings
	switch action {
	case GroupActionModify:
		// students can only rename a group they belong to
		return settings.AllowStudentsToModifyGroupName && IsGroupMember(membership, group)
	case GroupActionJoin:
		return settings.AllowStudentsToJoinGroups
	case GroupActionLeave:
		return settings.AllowStudentsToLeaveGroups
	case GroupActionAdd, GroupActionRemove:
		return settings.AllowStudentsToAddOrRemoveGroupMembers
	case GroupActionUpdateMembers:
		// batch roster replacement is staff-only
		return false
	}
	return false
}

// CanDeleteGroup expects group.Members to be loaded; students can only delete
// their own group.
func CanDeleteGroup(course *models.Course, membership *models.CourseMembership, group *models.CourseGroup) bool {
	if membership.Role.IsStaff() {
		return true
	}
	return course.Settings.AllowStudentsToDeleteGroups && IsGroupMember(membership, group)
}

// IsGroupMember expects group.Members to be loaded.
func IsGroupMember(membership *models.CourseMembership, group *models.CourseGroup) bool {
	for _, member := range group.Members {
		if member.MembershipID == membership.ID {
			return true
		}
	}
	return false
}

func CanViewGroupMembers(course *models.Course, membership *models.CourseMembership, group *models.CourseGroup) bool {
	if membership.Role.IsStaff() || course.Settings.ShowGroupMembersNames {
		return true
	}
	return IsGroupMember(membership, group)
}

// CanViewSubmission expects the submission's Group (with members) and
// ViewableGroups (with their groups' members) to be loaded.
func CanViewSubmission(membership *models.CourseMembership, submission *models.CourseSubmission) bool {
	if membership.Role.IsStaff() {
		return true
	}
	if submission.CreatorID == membership.ID || submission.EditorID == membership.ID {
		return true
	}
	if submission.Group != nil && IsGroupMember(membership, submission.Group) {
		return true
	}
	for _, viewable := range submission.ViewableGroups {
		if IsGroupMember(membership, &viewable.Group) {
			return true
		}
	}
	return false
}

func CanUpdateSubmission(membership *models.CourseMembership, submission *models.CourseSubmission) bool {
	if membership.Role.IsStaff() {
		return true
	}
	isOwner := submission.CreatorID == membership.ID || submission.EditorID == membership.ID
	return isOwner && submission.IsDraft
}

func CanDeleteSubmission(membership *models.CourseMembership, submission *models.CourseSubmission) bool {
	return CanUpdateSubmission(membership, submission)
}

func CanUpdateSubmissionComment(membership *models.CourseMembership, comment *models.CourseSubmissionComment) bool {
	if comment.IsDeleted {
		return false
	}
	return membership.Role.IsStaff() || comment.CommenterID == membership.UserID
}

func CanDeleteSubmissionComment(membership *models.CourseMembership, comment *models.CourseSubmissionComment) bool {
	return CanUpdateSubmissionComment(membership, comment)
}

func CanViewMilestoneTemplate(membership *models.CourseMembership, template *models.CourseMilestoneTemplate) bool {
	return template.IsPublished || membership.Role.IsStaff()
}
