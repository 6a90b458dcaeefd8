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

type TemplateController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewTemplateController(db *gorm.DB, cfg *config.Config) *TemplateController {
	return &TemplateController{DB: db, Cfg: cfg}
}

type templateInput struct {
	Name           string          `json:"name" validate:"required,max=255"`
	Description    string          `json:"description"`
	SubmissionType string          `json:"submission_type"`
	IsPublished    bool            `json:"is_published"`
	FormFieldData  models.JSONList `json:"form_field_data"`
}

func (tc *TemplateController) GetTemplates(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, tc.DB, tc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	query := tc.DB.Where("course_id = ?", course.ID)
	if membership.Role.IsExactly(models.RoleStudent) {
		query = query.Where("is_published = ?", true)
	}

	var templates []models.CourseMilestoneTemplate
	if err := query.Find(&templates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(templates))
	for i := range templates {
		result = append(result, templateJSON(&templates[i]))
	}
	return c.JSON(result)
}

func (tc *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	course, _, ok := requireMembership(c, tc.DB, tc.Cfg, models.RoleInstructor)
	if !ok {
		return nil
	}

	var input templateInput
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

	template := models.CourseMilestoneTemplate{
		CourseID:       course.ID,
		Name:           input.Name,
		Description:    input.Description,
		SubmissionType: input.SubmissionType,
		IsPublished:    input.IsPublished,
		FormFieldData:  input.FormFieldData,
	}
	if err := tc.DB.Create(&template).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create template",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(templateJSON(&template))
}

func (tc *TemplateController) loadTemplate(c *fiber.Ctx, course *models.Course) (*models.CourseMilestoneTemplate, bool) {
	templateID, ok := parseIDParam(c, "templateId")
	if !ok {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid template ID",
		})
		return nil, false
	}

	var template models.CourseMilestoneTemplate
	err := tc.DB.Where("id = ? AND course_id = ?", templateID, course.ID).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Template not found",
			})
		} else {
			c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		return nil, false
	}
	return &template, true
}

func (tc *TemplateController) GetTemplate(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, tc.DB, tc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	template, ok := tc.loadTemplate(c, course)
	if !ok {
		return nil
	}

	if !logic.CanViewMilestoneTemplate(membership, template) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Template is not published",
		})
	}

	return c.JSON(templateJSON(template))
}

func (tc *TemplateController) UpdateTemplate(c *fiber.Ctx) error {
	course, _, ok := requireMembership(c, tc.DB, tc.Cfg, models.RoleInstructor)
	if !ok {
		return nil
	}

	template, ok := tc.loadTemplate(c, course)
	if !ok {
		return nil
	}

	var input templateInput
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

	template.Name = input.Name
	template.Description = input.Description
	template.SubmissionType = input.SubmissionType
	template.IsPublished = input.IsPublished
	template.FormFieldData = input.FormFieldData

	if err := tc.DB.Save(template).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update template",
		})
	}

	return c.JSON(templateJSON(template))
}

func (tc *TemplateController) DeleteTemplate(c *fiber.Ctx) error {
	course, _, ok := requireMembership(c, tc.DB, tc.Cfg, models.RoleInstructor)
	if !ok {
		return nil
	}

	template, ok := tc.loadTemplate(c, course)
	if !ok {
		return nil
	}

	data := templateJSON(template)

	if err := logic.DeleteTemplate(tc.DB, template); err != nil {
		return respondLogicError(c, err)
	}

	return c.JSON(data)
}
