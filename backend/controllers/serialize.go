package controllers

import (
	"github.com/gofiber/fiber/v2"

	"project/backend/models"
)

// JSON shapes returned to clients. Kept in one place so list and detail
// endpoints stay consistent.

func userJSON(user *models.User) fiber.Map {
	return fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	}
}

func courseJSON(course *models.Course, membership *models.CourseMembership) fiber.Map {
	return fiber.Map{
		"id":           course.ID,
		"name":         course.Name,
		"owner":        userJSON(&course.Owner),
		"description":  course.Description,
		"is_published": course.IsPublished,
		"role":         membership.Role.String(),
		"settings": fiber.Map{
			"show_group_members_names":                      course.Settings.ShowGroupMembersNames,
			"allow_students_to_create_groups":               course.Settings.AllowStudentsToCreateGroups,
			"allow_students_to_delete_groups":               course.Settings.AllowStudentsToDeleteGroups,
			"allow_students_to_join_groups":                 course.Settings.AllowStudentsToJoinGroups,
			"allow_students_to_leave_groups":                course.Settings.AllowStudentsToLeaveGroups,
			"allow_students_to_modify_group_name":           course.Settings.AllowStudentsToModifyGroupName,
			"allow_students_to_add_or_remove_group_members": course.Settings.AllowStudentsToAddOrRemoveGroupMembers,
			"milestone_alias":                               course.Settings.MilestoneAlias,
		},
	}
}

func membershipJSON(membership *models.CourseMembership) fiber.Map {
	return fiber.Map{
		"id":   membership.ID,
		"user": userJSON(&membership.User),
		"role": membership.Role.String(),
	}
}

func groupJSON(group *models.CourseGroup) fiber.Map {
	return fiber.Map{
		"id":           group.ID,
		"name":         group.Name,
		"member_count": len(group.Members),
	}
}

// groupWithMembersJSON expects Members.Membership.User to be loaded.
func groupWithMembersJSON(group *models.CourseGroup) fiber.Map {
	members := make([]fiber.Map, 0, len(group.Members))
	for i := range group.Members {
		members = append(members, membershipJSON(&group.Members[i].Membership))
	}

	data := groupJSON(group)
	data["members"] = members
	return data
}

func milestoneJSON(milestone *models.CourseMilestone) fiber.Map {
	var end interface{}
	if milestone.EndDateTime != nil {
		end = milestone.EndDateTime.UnixMilli()
	}
	return fiber.Map{
		"id":              milestone.ID,
		"name":            milestone.Name,
		"description":     milestone.Description,
		"start_date_time": milestone.StartDateTime.UnixMilli(),
		"end_date_time":   end,
		"is_published":    milestone.IsPublished,
	}
}

func templateJSON(template *models.CourseMilestoneTemplate) fiber.Map {
	return fiber.Map{
		"id":              template.ID,
		"name":            template.Name,
		"description":     template.Description,
		"submission_type": template.SubmissionType,
		"is_published":    template.IsPublished,
		"form_field_data": template.FormFieldData,
	}
}

func submissionSummaryJSON(submission *models.CourseSubmission) fiber.Map {
	var group interface{}
	if submission.Group != nil {
		group = groupJSON(submission.Group)
	}
	return fiber.Map{
		"id":              submission.ID,
		"name":            submission.Name,
		"description":     submission.Description,
		"milestone_id":    submission.MilestoneID,
		"template_id":     submission.TemplateID,
		"group":           group,
		"creator":         membershipJSON(&submission.Creator),
		"editor":          membershipJSON(&submission.Editor),
		"is_draft":        submission.IsDraft,
		"submission_type": submission.SubmissionType,
	}
}

func submissionJSON(submission *models.CourseSubmission) fiber.Map {
	data := submissionSummaryJSON(submission)
	data["form_response_data"] = submission.FormResponseData
	return data
}

func commentJSON(comment *models.CourseSubmissionComment) fiber.Map {
	return fiber.Map{
		"id":          comment.ID,
		"field_index": comment.FieldIndex,
		"commenter":   userJSON(&comment.Commenter),
		"content":     comment.Content,
		"is_deleted":  comment.IsDeleted,
		"created_at":  comment.CreatedAt.UnixMilli(),
		"updated_at":  comment.UpdatedAt.UnixMilli(),
	}
}
