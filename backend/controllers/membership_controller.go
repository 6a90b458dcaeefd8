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

type MembershipController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewMembershipController(db *gorm.DB, cfg *config.Config) *MembershipController {
	return &MembershipController{DB: db, Cfg: cfg}
}

func (mc *MembershipController) GetMemberships(c *fiber.Ctx) error {
	course, _, ok := requireMembership(c, mc.DB, mc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	var memberships []models.CourseMembership
	err := mc.DB.Preload("User").Where("course_id = ?", course.ID).Find(&memberships).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(memberships))
	for i := range memberships {
		result = append(result, membershipJSON(&memberships[i]))
	}
	return c.JSON(result)
}

func (mc *MembershipController) CreateMembership(c *fiber.Ctx) error {
	course, _, ok := requireMembership(c, mc.DB, mc.Cfg, models.RoleCoOwner)
	if !ok {
		return nil
	}

	var input struct {
		UserID uint   `json:"user_id" validate:"required"`
		Role   string `json:"role" validate:"required"`
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

	role, err := models.ParseRole(input.Role)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	membership, err := logic.CreateMembership(mc.DB, course, input.UserID, role)
	if err != nil {
		return respondLogicError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(membershipJSON(membership))
}

// BatchCreateMemberships imports members by email, creating accounts for
// emails not seen before. Pre-existing memberships are left untouched.
func (mc *MembershipController) BatchCreateMemberships(c *fiber.Ctx) error {
	course, _, ok := requireMembership(c, mc.DB, mc.Cfg, models.RoleCoOwner)
	if !ok {
		return nil
	}

	var input struct {
		MemberCreationData []logic.MemberCreationData `json:"member_creation_data" validate:"required,dive"`
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

	memberships, err := logic.BatchCreateMemberships(mc.DB, course, input.MemberCreationData)
	if err != nil {
		return respondLogicError(c, err)
	}

	result := make([]fiber.Map, 0, len(memberships))
	for i := range memberships {
		result = append(result, membershipJSON(&memberships[i]))
	}
	return c.JSON(result)
}

func (mc *MembershipController) loadMembership(c *fiber.Ctx, course *models.Course) (*models.CourseMembership, bool) {
	membershipID, ok := parseIDParam(c, "membershipId")
	if !ok {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid membership ID",
		})
		return nil, false
	}

	var membership models.CourseMembership
	err := mc.DB.Preload("User").
		Where("id = ? AND course_id = ?", membershipID, course.ID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Membership not found",
			})
		} else {
			c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		return nil, false
	}
	return &membership, true
}

func (mc *MembershipController) UpdateMembership(c *fiber.Ctx) error {
	course, requester, ok := requireMembership(c, mc.DB, mc.Cfg, models.RoleCoOwner)
	if !ok {
		return nil
	}

	target, ok := mc.loadMembership(c, course)
	if !ok {
		return nil
	}

	var input struct {
		Role string `json:"role" validate:"required"`
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

	role, err := models.ParseRole(input.Role)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := logic.UpdateMembershipRole(mc.DB, course, requester, target, role); err != nil {
		return respondLogicError(c, err)
	}

	return c.JSON(membershipJSON(target))
}

func (mc *MembershipController) DeleteMembership(c *fiber.Ctx) error {
	course, requester, ok := requireMembership(c, mc.DB, mc.Cfg, models.RoleCoOwner)
	if !ok {
		return nil
	}

	target, ok := mc.loadMembership(c, course)
	if !ok {
		return nil
	}

	data := membershipJSON(target)

	if err := logic.DeleteMembership(mc.DB, course, requester, target); err != nil {
		return respondLogicError(c, err)
	}

	return c.JSON(data)
}
