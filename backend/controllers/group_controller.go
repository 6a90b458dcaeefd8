package controllers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/logic"
	"project/backend/models"
	"project/backend/utils"
)

type GroupController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewGroupController(db *gorm.DB, cfg *config.Config) *GroupController {
	return &GroupController{DB: db, Cfg: cfg}
}

func (gc *GroupController) loadGroup(c *fiber.Ctx, course *models.Course) (*models.CourseGroup, bool) {
	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
		return nil, false
	}

	var group models.CourseGroup
	err := gc.DB.Preload("Members.Membership.User").
		Where("id = ? AND course_id = ?", groupID, course.ID).
		First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Group not found",
			})
		} else {
			c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		return nil, false
	}
	return &group, true
}

// GetGroups lists the course's groups; rosters are only included where the
// requester may see them. ?me=true narrows to the requester's own groups.
func (gc *GroupController) GetGroups(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, gc.DB, gc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	onlyMine := c.QueryBool("me", false)

	var groups []models.CourseGroup
	err := gc.DB.Preload("Members.Membership.User").
		Where("course_id = ?", course.ID).Find(&groups).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(groups))
	for i := range groups {
		group := &groups[i]
		if onlyMine && !logic.IsGroupMember(membership, group) {
			continue
		}
		if logic.CanViewGroupMembers(course, membership, group) {
			result = append(result, groupWithMembersJSON(group))
		} else {
			result = append(result, groupJSON(group))
		}
	}
	return c.JSON(result)
}

func (gc *GroupController) CreateGroup(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, gc.DB, gc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	if !logic.CanCreateGroup(course, membership) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Students may not create groups in this course",
		})
	}

	var input struct {
		Name string `json:"name" validate:"required,max=255"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	group, err := logic.CreateGroup(gc.DB, course, input.Name)
	if err != nil {
		return respondLogicError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(groupJSON(group))
}

func (gc *GroupController) GetGroup(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, gc.DB, gc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	group, ok := gc.loadGroup(c, course)
	if !ok {
		return nil
	}

	if logic.CanViewGroupMembers(course, membership, group) {
		return c.JSON(groupWithMembersJSON(group))
	}
	return c.JSON(groupJSON(group))
}

type patchGroupInput struct {
	Action  string          `json:"action" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

// PatchGroup dispatches on the action enum: MODIFY renames, JOIN/LEAVE are
// student self-service, ADD/REMOVE act on another user, UPDATE_MEMBERS
// replaces the whole roster.
func (gc *GroupController) PatchGroup(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, gc.DB, gc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	group, ok := gc.loadGroup(c, course)
	if !ok {
		return nil
	}

	var input patchGroupInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	action, err := logic.ParseGroupAction(input.Action)
	if err != nil {
		return respondLogicError(c, err)
	}

	if !logic.CanUpdateGroup(course, membership, group, action) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You may not perform this action on the group",
		})
	}

	switch action {
	case logic.GroupActionModify:
		var payload struct {
			Name string `json:"name" validate:"required,max=255"`
		}
		if err := json.Unmarshal(input.Payload, &payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid payload",
			})
		}
		if err := utils.ValidateStruct(payload); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if err := logic.RenameGroup(gc.DB, group, payload.Name); err != nil {
			return respondLogicError(c, err)
		}

	case logic.GroupActionJoin:
		if err := logic.JoinGroup(gc.DB, group, membership); err != nil {
			return respondLogicError(c, err)
		}

	case logic.GroupActionLeave:
		if err := logic.LeaveGroup(gc.DB, group, membership); err != nil {
			return respondLogicError(c, err)
		}

	case logic.GroupActionAdd, logic.GroupActionRemove:
		var payload struct {
			UserID uint `json:"user_id" validate:"required"`
		}
		if err := json.Unmarshal(input.Payload, &payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid payload",
			})
		}
		if err := utils.ValidateStruct(payload); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		var target models.CourseMembership
		err := gc.DB.Preload("User").
			Where("course_id = ? AND user_id = ?", course.ID, payload.UserID).
			First(&target).Error
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Target user is not a member of this course",
			})
		}

		if action == logic.GroupActionAdd {
			err = logic.AddGroupMember(gc.DB, group, &target)
		} else {
			err = logic.RemoveGroupMember(gc.DB, group, &target)
		}
		if err != nil {
			return respondLogicError(c, err)
		}

	case logic.GroupActionUpdateMembers:
		var payload struct {
			UserIDs []uint `json:"user_ids" validate:"required"`
		}
		if err := json.Unmarshal(input.Payload, &payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid payload",
			})
		}
		if err := utils.ValidateStruct(payload); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if err := logic.BatchReplaceGroupMembers(gc.DB, course, group, payload.UserIDs); err != nil {
			return respondLogicError(c, err)
		}
	}

	// reload the roster after the mutation
	updated, ok := gc.loadGroup(c, course)
	if !ok {
		return nil
	}
	return c.JSON(groupWithMembersJSON(updated))
}

func (gc *GroupController) DeleteGroup(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, gc.DB, gc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	group, ok := gc.loadGroup(c, course)
	if !ok {
		return nil
	}

	if !logic.CanDeleteGroup(course, membership, group) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Students may not delete groups in this course",
		})
	}

	data := groupWithMembersJSON(group)

	if err := logic.DeleteGroup(gc.DB, group); err != nil {
		return respondLogicError(c, err)
	}

	return c.JSON(data)
}
