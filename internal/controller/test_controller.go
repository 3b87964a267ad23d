package controller

import (
	"testprep_backend/internal/service"
	"testprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	Service *service.TestService
}

func NewTestController(svc *service.TestService) *TestController {
	return &TestController{Service: svc}
}

// @Summary List active tests
// @Tags tests
// @Produce json
// @Security ApiKeyAuth
// @Param categoryId query int false "Category ID"
// @Success 200 {object} util.Response
// @Router /api/tests [get]
func (c *TestController) ListTests(ctx *gin.Context) {
	categoryID := util.MustParseUint(ctx.Query("categoryId"))

	tests, err := c.Service.ListTests(categoryID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, tests)
}

// @Summary Test detail
// @Tags tests
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/tests/{id} [get]
func (c *TestController) GetTest(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid test id")
		return
	}

	t, err := c.Service.GetTest(id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, t)
}
