package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/logic"
	"project/backend/models"
	"project/backend/utils"
)

type MilestoneController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewMilestoneController(db *gorm.DB, cfg *config.Config) *MilestoneController {
	return &MilestoneController{DB: db, Cfg: cfg}
}

type milestoneInput struct {
	Name          string `json:"name" validate:"required,max=255"`
	Description   string `json:"description"`
	StartDateTime int64  `json:"start_date_time" validate:"min=0"`
	EndDateTime   *int64 `json:"end_date_time"`
	IsPublished   bool   `json:"is_published"`
}

func (in milestoneInput) window() (time.Time, *time.Time) {
	start := time.UnixMilli(in.StartDateTime)
	var end *time.Time
	if in.EndDateTime != nil {
		t := time.UnixMilli(*in.EndDateTime)
		end = &t
	}
	return start, end
}

func (mc *MilestoneController) GetMilestones(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, mc.DB, mc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	query := mc.DB.Where("course_id = ?", course.ID)
	if membership.Role.IsExactly(models.RoleStudent) {
		query = query.Where("is_published = ?", true)
	}

	var milestones []models.CourseMilestone
	if err := query.Find(&milestones).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(milestones))
	for i := range milestones {
		result = append(result, milestoneJSON(&milestones[i]))
	}
	return c.JSON(result)
}

func (mc *MilestoneController) CreateMilestone(c *fiber.Ctx) error {
	course, _, ok := requireMembership(c, mc.DB, mc.Cfg, models.RoleInstructor)
	if !ok {
		return nil
	}

	var input milestoneInput
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

	start, end := input.window()
	milestone, err := logic.CreateMilestone(mc.DB, course, input.Name, input.Description, start, end, input.IsPublished)
	if err != nil {
		return respondLogicError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(milestoneJSON(milestone))
}

func (mc *MilestoneController) loadMilestone(c *fiber.Ctx, course *models.Course) (*models.CourseMilestone, bool) {
	milestoneID, ok := parseIDParam(c, "milestoneId")
	if !ok {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid milestone ID",
		})
		return nil, false
	}

	var milestone models.CourseMilestone
	err := mc.DB.Where("id = ? AND course_id = ?", milestoneID, course.ID).First(&milestone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Milestone not found",
			})
		} else {
			c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		return nil, false
	}
	return &milestone, true
}

func (mc *MilestoneController) GetMilestone(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, mc.DB, mc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	milestone, ok := mc.loadMilestone(c, course)
	if !ok {
		return nil
	}

	if membership.Role.IsExactly(models.RoleStudent) && !milestone.IsPublished {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Milestone is not published",
		})
	}

	return c.JSON(milestoneJSON(milestone))
}

func (mc *MilestoneController) UpdateMilestone(c *fiber.Ctx) error {
	course, _, ok := requireMembership(c, mc.DB, mc.Cfg, models.RoleInstructor)
	if !ok {
		return nil
	}

	milestone, ok := mc.loadMilestone(c, course)
	if !ok {
		return nil
	}

	var input milestoneInput
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

	start, end := input.window()
	if err := logic.UpdateMilestone(mc.DB, milestone, input.Name, input.Description, start, end, input.IsPublished); err != nil {
		return respondLogicError(c, err)
	}

	return c.JSON(milestoneJSON(milestone))
}

func (mc *MilestoneController) DeleteMilestone(c *fiber.Ctx) error {
	course, _, ok := requireMembership(c, mc.DB, mc.Cfg, models.RoleInstructor)
	if !ok {
		return nil
	}

	milestone, ok := mc.loadMilestone(c, course)
	if !ok {
		return nil
	}

	data := milestoneJSON(milestone)

	if err := logic.DeleteMilestone(mc.DB, milestone); err != nil {
		return respondLogicError(c, err)
	}

	return c.JSON(data)
}
