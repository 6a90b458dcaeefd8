package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/logic"
	"project/backend/models"
	"project/backend/utils"
)

func parseIDParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// respondLogicError maps the logic package's error kinds to HTTP statuses.
func respondLogicError(c *fiber.Ctx, err error) error {
	var status int
	switch {
	case errors.Is(err, logic.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, logic.ErrPermissionDenied), errors.Is(err, logic.ErrPolicyViolation):
		status = fiber.StatusForbidden
	case errors.Is(err, logic.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, logic.ErrBadRequest):
		status = fiber.StatusBadRequest
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not process request",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// requireMembership resolves the course from the :courseId param and the
// requester's membership in it, enforcing a minimum role. On failure it has
// already written the response and returns ok=false.
func requireMembership(c *fiber.Ctx, db *gorm.DB, cfg *config.Config, minRole models.Role) (*models.Course, *models.CourseMembership, bool) {
	userID, err := utils.ExtractUserIDFromToken(c, cfg)
	if err != nil {
		c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
		return nil, nil, false
	}

	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
		return nil, nil, false
	}

	var course models.Course
	if err := db.Preload("Settings").Preload("Owner").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		} else {
			c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		return nil, nil, false
	}

	var membership models.CourseMembership
	err = db.Preload("User").
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "You are not a member of this course",
			})
		} else {
			c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		return nil, nil, false
	}

	if !membership.Role.HasAtLeast(minRole) {
		c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient course role",
		})
		return nil, nil, false
	}

	return &course, &membership, true
}
