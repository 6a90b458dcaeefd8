package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/logic"
	"project/backend/models"
	"project/backend/utils"
)

type CourseController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCourseController(db *gorm.DB, cfg *config.Config) *CourseController {
	return &CourseController{DB: db, Cfg: cfg}
}

type courseInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	IsPublished bool   `json:"is_published"`
	logic.CourseSettingsInput
}

// GetMyCourses lists the requester's courses. Students only see published
// ones.
func (cc *CourseController) GetMyCourses(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var memberships []models.CourseMembership
	err = cc.DB.Where("user_id = ?", userID).Find(&memberships).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(memberships))
	for i := range memberships {
		membership := &memberships[i]

		var course models.Course
		err := cc.DB.Preload("Settings").Preload("Owner").
			First(&course, membership.CourseID).Error
		if err != nil {
			continue
		}
		if !course.IsPublished && membership.Role.IsExactly(models.RoleStudent) {
			continue
		}

		result = append(result, courseJSON(&course, membership))
	}

	return c.JSON(result)
}

func (cc *CourseController) CreateCourse(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input courseInput
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

	var owner models.User
	if err := cc.DB.First(&owner, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	course, membership, err := logic.CreateCourse(
		cc.DB, &owner, input.Name, input.Description, input.IsPublished, input.CourseSettingsInput,
	)
	if err != nil {
		return respondLogicError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(courseJSON(course, membership))
}

func (cc *CourseController) GetCourse(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, cc.DB, cc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	return c.JSON(courseJSON(course, membership))
}

func (cc *CourseController) UpdateCourse(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, cc.DB, cc.Cfg, models.RoleCoOwner)
	if !ok {
		return nil
	}

	var input struct {
		courseInput
		OwnerID *uint `json:"owner_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := utils.ValidateStruct(input.courseInput); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// only the current owner can hand the course off
	if input.OwnerID != nil && course.OwnerID != membership.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only the course owner can change ownership",
		})
	}

	err := logic.UpdateCourse(
		cc.DB, course, input.OwnerID,
		input.Name, input.Description, input.IsPublished, input.CourseSettingsInput,
	)
	if err != nil {
		return respondLogicError(c, err)
	}

	return c.JSON(courseJSON(course, membership))
}

func (cc *CourseController) DeleteCourse(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, cc.DB, cc.Cfg, models.RoleCoOwner)
	if !ok {
		return nil
	}

	// a co-owner who is not the owner cannot delete the course
	if course.OwnerID != membership.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only the course owner can delete the course",
		})
	}

	data := courseJSON(course, membership)

	if err := logic.DeleteCourse(cc.DB, course); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return respondLogicError(c, err)
	}

	return c.JSON(data)
}
