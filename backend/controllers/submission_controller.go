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

type SubmissionController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSubmissionController(db *gorm.DB, cfg *config.Config) *SubmissionController {
	return &SubmissionController{DB: db, Cfg: cfg}
}

type submissionInput struct {
	GroupID          *uint           `json:"group_id"`
	Name             string          `json:"name" validate:"required,max=255"`
	Description      string          `json:"description"`
	IsDraft          bool            `json:"is_draft"`
	SubmissionType   string          `json:"submission_type"`
	FormResponseData models.JSONList `json:"form_response_data"`
}

func (in submissionInput) toLogic() logic.SubmissionInput {
	return logic.SubmissionInput{
		GroupID:          in.GroupID,
		Name:             in.Name,
		Description:      in.Description,
		IsDraft:          in.IsDraft,
		SubmissionType:   in.SubmissionType,
		FormResponseData: in.FormResponseData,
	}
}

func queryID(c *fiber.Ctx, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return nil
	}
	value := uint(id)
	return &value
}

func (sc *SubmissionController) loadSubmission(c *fiber.Ctx, course *models.Course) (*models.CourseSubmission, bool) {
	submissionID, ok := parseIDParam(c, "submissionId")
	if !ok {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid submission ID",
		})
		return nil, false
	}

	var submission models.CourseSubmission
	err := sc.DB.Preload("Group.Members").
		Preload("ViewableGroups.Group.Members").
		Preload("Creator.User").
		Preload("Editor.User").
		Where("id = ? AND course_id = ?", submissionID, course.ID).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Submission not found",
			})
		} else {
			c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		return nil, false
	}
	return &submission, true
}

// GetSubmissions lists the course's submissions the requester may see,
// narrowed by the optional query filters.
func (sc *SubmissionController) GetSubmissions(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, sc.DB, sc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	filter := logic.SubmissionFilter{
		MilestoneID: queryID(c, "milestone_id"),
		GroupID:     queryID(c, "group_id"),
		CreatorID:   queryID(c, "creator_id"),
		EditorID:    queryID(c, "editor_id"),
		TemplateID:  queryID(c, "template_id"),
	}
	full := c.QueryBool("full", false)

	submissions, err := logic.ListSubmissions(sc.DB, course, filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(submissions))
	for i := range submissions {
		submission := &submissions[i]
		if !logic.CanViewSubmission(membership, submission) {
			continue
		}
		if full {
			result = append(result, submissionJSON(submission))
		} else {
			result = append(result, submissionSummaryJSON(submission))
		}
	}
	return c.JSON(result)
}

func (sc *SubmissionController) CreateSubmission(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, sc.DB, sc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	var input struct {
		submissionInput
		MilestoneID uint `json:"milestone_id" validate:"required"`
		TemplateID  uint `json:"template_id" validate:"required"`
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

	submission, err := logic.CreateSubmission(
		sc.DB, course, membership, input.MilestoneID, input.TemplateID, input.toLogic(),
	)
	if err != nil {
		return respondLogicError(c, err)
	}

	submission.Creator = *membership
	submission.Editor = *membership

	return c.Status(fiber.StatusCreated).JSON(submissionJSON(submission))
}

func (sc *SubmissionController) GetSubmission(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, sc.DB, sc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	submission, ok := sc.loadSubmission(c, course)
	if !ok {
		return nil
	}

	if !logic.CanViewSubmission(membership, submission) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You may not view this submission",
		})
	}

	return c.JSON(submissionJSON(submission))
}

func (sc *SubmissionController) UpdateSubmission(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, sc.DB, sc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	submission, ok := sc.loadSubmission(c, course)
	if !ok {
		return nil
	}

	if !logic.CanUpdateSubmission(membership, submission) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You may not update this submission",
		})
	}

	var input submissionInput
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

	if err := logic.UpdateSubmission(sc.DB, course, membership, submission, input.toLogic()); err != nil {
		return respondLogicError(c, err)
	}

	updated, ok := sc.loadSubmission(c, course)
	if !ok {
		return nil
	}
	return c.JSON(submissionJSON(updated))
}

func (sc *SubmissionController) DeleteSubmission(c *fiber.Ctx) error {
	course, membership, ok := requireMembership(c, sc.DB, sc.Cfg, models.RoleStudent)
	if !ok {
		return nil
	}

	submission, ok := sc.loadSubmission(c, course)
	if !ok {
		return nil
	}

	if !logic.CanDeleteSubmission(membership, submission) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You may not delete this submission",
		})
	}

	data := submissionJSON(submission)

	if err := logic.DeleteSubmission(sc.DB, submission); err != nil {
		return respondLogicError(c, err)
	}

	return c.JSON(data)
}

func (sc *SubmissionController) GetViewableGroups(c *fiber.Ctx) error {
	course, _, ok := requireMembership(c, sc.DB, sc.Cfg, models.RoleInstructor)
	if !ok {
		return nil
	}

	submission, ok := sc.loadSubmission(c, course)
	if !ok {
		return nil
	}

	result := make([]fiber.Map, 0, len(submission.ViewableGroups))
	for i := range submission.ViewableGroups {
		result = append(result, groupJSON(&submission.ViewableGroups[i].Group))
	}
	return c.JSON(result)
}

func (sc *SubmissionController) UpdateViewableGroups(c *fiber.Ctx) error {
	course, _, ok := requireMembership(c, sc.DB, sc.Cfg, models.RoleInstructor)
	if !ok {
		return nil
	}

	submission, ok := sc.loadSubmission(c, course)
	if !ok {
		return nil
	}

	var input struct {
		GroupIDs []uint `json:"group_ids" validate:"required"`
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

	viewableGroups, err := logic.BatchReplaceViewableGroups(sc.DB, course, submission, input.GroupIDs)
	if err != nil {
		return respondLogicError(c, err)
	}

	result := make([]fiber.Map, 0, len(viewableGroups))
	for i := range viewableGroups {
		result = append(result, groupJSON(&viewableGroups[i].Group))
	}
	return c.JSON(result)
}
