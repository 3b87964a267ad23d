package controller

import (
	"testprep_backend/internal/service"
	"testprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Service *service.AttemptService
}

func NewAttemptController(svc *service.AttemptService) *AttemptController {
	return &AttemptController{Service: svc}
}

// @Summary Start or resume a test attempt
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Test ID"
// @Success 201 {object} util.Response
// @Router /api/tests/{id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	testID := util.MustParseUint(ctx.Param("id"))
	if testID == 0 {
		util.BadRequest(ctx, "invalid test id")
		return
	}

	attempt, err := c.Service.StartAttempt(user.UserID, testID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, attempt)
}

// @Summary Get the attempt's question paper and remaining time
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/questions [get]
func (c *AttemptController) GetQuestions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("id"))
	resp, err := c.Service.GetAttemptQuestions(attemptID, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, resp)
}

type saveAnswerRequest struct {
	QuestionID       uint `json:"questionId" binding:"required"`
	SelectedOption   *int `json:"selectedOption"` // null clears the answer
	TimeSpentSeconds int  `json:"timeSpentSeconds"`
}

// @Summary Save one answer (auto-save friendly)
// @Tags attempts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Attempt ID"
// @Param body body saveAnswerRequest true "Answer"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/answers [put]
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req saveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attemptID := util.MustParseUint(ctx.Param("id"))
	err := c.Service.SaveAnswer(attemptID, user.UserID, req.QuestionID, req.SelectedOption, req.TimeSpentSeconds)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"saved": true})
}

// @Summary Submit and score the attempt
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("id"))
	result, err := c.Service.SubmitAttempt(attemptID, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary Result summary of a submitted attempt
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/result [get]
func (c *AttemptController) GetResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("id"))
	result, err := c.Service.GetResult(attemptID, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary Per-question solution breakdown (owner only)
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/solution [get]
func (c *AttemptController) GetSolution(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("id"))
	entries, err := c.Service.GetSolution(attemptID, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, entries)
}

// @Summary The requester's attempt history
// @Tags attempts
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/attempts [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.Service.ListAttempts(user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, attempts)
}
