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

type CommentController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCommentController(db *gorm.DB, cfg *config.Config) *CommentController {
	return &CommentController{DB: db, Cfg: cfg}
}

// submission loading is shared with the submission controller's semantics:
// the comment routes nest under a submission and require view access first.
func (cc *CommentController) loadViewableSubmission(c *fiber.Ctx) (*models.Course, *models.CourseMembership, *models.CourseSubmission, bool) {
	course, membership, ok := requireMembership(c, cc.DB, cc.Cfg, models.RoleStudent)
	if !ok {
		return nil, nil, nil, false
	}

	submissionID, idOK := parseIDParam(c, "submissionId")
	if !idOK {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid submission ID",
		})
		return nil, nil, nil, false
	}

	var submission models.CourseSubmission
	err := cc.DB.Preload("Group.Members").
		Preload("ViewableGroups.Group.Members").
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
		return nil, nil, nil, false
	}

	if !logic.CanViewSubmission(membership, &submission) {
		c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You may not view this submission",
		})
		return nil, nil, nil, false
	}

	return course, membership, &submission, true
}

// GetFieldCommentCounts returns one count per form response field, aligned
// with the submission's form response data.
func (cc *CommentController) GetFieldCommentCounts(c *fiber.Ctx) error {
	_, _, submission, ok := cc.loadViewableSubmission(c)
	if !ok {
		return nil
	}

	var comments []models.CourseSubmissionComment
	err := cc.DB.Where("submission_id = ?", submission.ID).Find(&comments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	counts := make([]int, len(submission.FormResponseData))
	for _, comment := range comments {
		if comment.FieldIndex >= 0 && comment.FieldIndex < len(counts) {
			counts[comment.FieldIndex]++
		}
	}
	return c.JSON(counts)
}

func (cc *CommentController) fieldIndex(c *fiber.Ctx, submission *models.CourseSubmission) (int, bool) {
	index, err := c.ParamsInt("fieldIndex")
	if err != nil || index < 0 || index >= len(submission.FormResponseData) {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No such field",
		})
		return 0, false
	}
	return index, true
}

func (cc *CommentController) GetFieldComments(c *fiber.Ctx) error {
	_, _, submission, ok := cc.loadViewableSubmission(c)
	if !ok {
		return nil
	}

	fieldIndex, ok := cc.fieldIndex(c, submission)
	if !ok {
		return nil
	}

	var comments []models.CourseSubmissionComment
	err := cc.DB.Preload("Commenter").
		Where("submission_id = ? AND field_index = ?", submission.ID, fieldIndex).
		Order("created_at").
		Find(&comments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(comments))
	for i := range comments {
		result = append(result, commentJSON(&comments[i]))
	}
	return c.JSON(result)
}

func (cc *CommentController) CreateComment(c *fiber.Ctx) error {
	_, membership, submission, ok := cc.loadViewableSubmission(c)
	if !ok {
		return nil
	}

	fieldIndex, ok := cc.fieldIndex(c, submission)
	if !ok {
		return nil
	}

	var input struct {
		Content string `json:"content" validate:"required"`
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

	comment, err := logic.CreateSubmissionComment(cc.DB, submission, &membership.User, fieldIndex, input.Content)
	if err != nil {
		return respondLogicError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(commentJSON(comment))
}

func (cc *CommentController) loadComment(c *fiber.Ctx, submission *models.CourseSubmission) (*models.CourseSubmissionComment, bool) {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid comment ID",
		})
		return nil, false
	}

	var comment models.CourseSubmissionComment
	err := cc.DB.Preload("Commenter").
		Where("id = ? AND submission_id = ?", commentID, submission.ID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Comment not found",
			})
		} else {
			c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		return nil, false
	}
	return &comment, true
}

func (cc *CommentController) UpdateComment(c *fiber.Ctx) error {
	_, membership, submission, ok := cc.loadViewableSubmission(c)
	if !ok {
		return nil
	}

	comment, ok := cc.loadComment(c, submission)
	if !ok {
		return nil
	}

	// an already-deleted comment falls through to the logic layer's 400
	if !comment.IsDeleted && !logic.CanUpdateSubmissionComment(membership, comment) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You may not update this comment",
		})
	}

	var input struct {
		Content string `json:"content" validate:"required"`
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

	if err := logic.UpdateSubmissionComment(cc.DB, comment, input.Content); err != nil {
		return respondLogicError(c, err)
	}

	return c.JSON(commentJSON(comment))
}

func (cc *CommentController) DeleteComment(c *fiber.Ctx) error {
	_, membership, submission, ok := cc.loadViewableSubmission(c)
	if !ok {
		return nil
	}

	comment, ok := cc.loadComment(c, submission)
	if !ok {
		return nil
	}

	// a comment that is already soft-deleted fails the double delete check
	// inside the logic layer with a 400, not the permission check here
	if !comment.IsDeleted && !logic.CanDeleteSubmissionComment(membership, comment) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You may not delete this comment",
		})
	}

	if err := logic.DeleteSubmissionComment(cc.DB, comment); err != nil {
		return respondLogicError(c, err)
	}

	return c.JSON(commentJSON(comment))
}
