package v1

import (
	"net/http"

	"github.com/hearthledger/backend/internal/httputil"
	"github.com/hearthledger/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

// RegisterTemplateRoutes registers the routes for budget templates with
// the RouterGroup that is passed.
func RegisterTemplateRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsTemplateList)
		r.GET("", GetTemplates)
		r.POST("", CreateTemplate)
	}

	// Template with ID
	{
		r.OPTIONS("/:id", OptionsTemplateDetail)
		r.GET("/:id", GetTemplate)
		r.PATCH("/:id", UpdateTemplate)
		r.DELETE("/:id", DeleteTemplate)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Templates
// @Success		204
// @Router			/v1/templates [options]
func OptionsTemplateList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Templates
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/templates/{id} [options]
func OptionsTemplateDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.BudgetTemplate{})
}

// @Summary		Create template
// @Description	Creates a new budget template
// @Tags			Templates
// @Accept			json
// @Produce		json
// @Success		201			{object}	TemplateResponse
// @Failure		400			{object}	TemplateResponse
// @Failure		404			{object}	TemplateResponse
// @Failure		500			{object}	TemplateResponse
// @Param			template	body		TemplateEditable	true	"Template"
// @Router			/v1/templates [post]
func CreateTemplate(c *gin.Context) {
	var editable TemplateEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	template := editable.model()
	err = models.DB.Create(&template).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	data := newTemplate(c, template)
	c.JSON(http.StatusCreated, TemplateResponse{Data: &data})
}

// @Summary		List templates
// @Description	Returns a list of budget templates in execution order
// @Tags			Templates
// @Produce		json
// @Success		200	{object}	TemplateListResponse
// @Failure		400	{object}	TemplateListResponse
// @Failure		500	{object}	TemplateListResponse
// @Router			/v1/templates [get]
// @Param			owner		query	string	false	"Filter by owner ID"
// @Param			account		query	string	false	"Filter by destination account ID"
// @Param			type		query	string	false	"Filter by allocation type"
// @Param			archived	query	bool	false	"Is the template archived?"
// @Param			offset		query	uint	false	"The offset of the first template returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of templates to return. Defaults to 50."
func GetTemplates(c *gin.Context) {
	var filter TemplateQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	// Execution order, like the allocation engine sees it
	q := models.DB.
		Order("priority ASC").
		Order("strftime('%Y-%m-%d %H:%M:%f', created_at) ASC").
		Order("id ASC").
		Where(filter.model(), queryFields...)

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var templates []models.BudgetTemplate
	err := q.Find(&templates).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateListResponse{
			Error: &s,
		})
		return
	}

	apiResources := make([]Template, 0)
	for _, template := range templates {
		apiResources = append(apiResources, newTemplate(c, template))
	}

	c.JSON(http.StatusOK, TemplateListResponse{
		Data: apiResources,
		Pagination: &Pagination{
			Count:  len(apiResources),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get template
// @Description	Returns a specific budget template
// @Tags			Templates
// @Produce		json
// @Success		200	{object}	TemplateResponse
// @Failure		400	{object}	TemplateResponse
// @Failure		404	{object}	TemplateResponse
// @Failure		500	{object}	TemplateResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/templates/{id} [get]
func GetTemplate(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	var template models.BudgetTemplate
	err = models.DB.First(&template, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	data := newTemplate(c, template)
	c.JSON(http.StatusOK, TemplateResponse{Data: &data})
}

// @Summary		Update template
// @Description	Update an existing budget template. Only values to be updated need to be specified.
// @Tags			Templates
// @Accept			json
// @Produce		json
// @Success		200			{object}	TemplateResponse
// @Failure		400			{object}	TemplateResponse
// @Failure		404			{object}	TemplateResponse
// @Failure		500			{object}	TemplateResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			template	body		TemplateEditable	true	"Template"
// @Router			/v1/templates/{id} [patch]
func UpdateTemplate(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	var template models.BudgetTemplate
	err = models.DB.First(&template, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, TemplateEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	var data TemplateEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Model(&template).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{
			Error: &s,
		})
		return
	}

	apiResource := newTemplate(c, template)
	c.JSON(http.StatusOK, TemplateResponse{Data: &apiResource})
}

// @Summary		Delete template
// @Description	Deletes a budget template. Allocations that reference it are kept.
// @Tags			Templates
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/templates/{id} [delete]
func DeleteTemplate(c *gin.Context) {
	deleteResource[models.BudgetTemplate](c)
}
