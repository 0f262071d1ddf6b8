package v1

import (
	"net/http"
	"time"

	"github.com/hearthledger/backend/internal/httputil"
	"github.com/hearthledger/backend/internal/models"
	"github.com/hearthledger/backend/internal/types"
	hl_uuid "github.com/hearthledger/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterPeriodRoutes registers the routes for weekly periods with
// the RouterGroup that is passed.
//
// POST resolves the current period for an owner, fabricating any missing
// weeks. Periods are never created with arbitrary start dates through the
// API, the timeline stays gap-free by construction.
func RegisterPeriodRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsPeriodList)
	r.GET("", GetPeriods)
	r.POST("", CurrentPeriod)

	r.OPTIONS("/:id", OptionsPeriodDetail)
	r.GET("/:id", GetPeriod)
}

type PeriodRequest struct {
	OwnerID uuid.UUID `json:"ownerId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // ID of the owner
	Now     time.Time `json:"now" example:"2024-05-15T14:43:00Z"`                     // Reference time, defaults to the wall clock
}

type Period struct {
	models.DefaultModel
	OwnerID   uuid.UUID  `json:"ownerId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // ID of the owner
	StartDate types.Week `json:"startDate" example:"2024-05-13"`                         // First day of the 7-day window
	EndDate   time.Time  `json:"endDate" example:"2024-05-20T00:00:00Z"`                 // First instant after the window
	Current   bool       `json:"current" example:"true"`                                 // Does the window cover now?
}

func newPeriod(model models.WeeklyPeriod) Period {
	return Period{
		DefaultModel: model.DefaultModel,
		OwnerID:      model.OwnerID,
		StartDate:    model.StartDate,
		EndDate:      model.End(),
		Current:      model.IsCurrent(time.Now()),
	}
}

type PeriodResponse struct {
	Data  *Period `json:"data"`                                                          // Data for the period
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type PeriodListResponse struct {
	Data  []Period `json:"data"`                                                          // List of periods, oldest first
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type PeriodQueryFilter struct {
	OwnerID hl_uuid.UUID `form:"owner"`                    // By ID of the owner
	From    string       `form:"from" filterField:"false"` // Only periods starting on or after this week, YYYY-MM-DD
	To      string       `form:"to" filterField:"false"`   // Only periods starting on or before this week, YYYY-MM-DD
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Periods
// @Success		204
// @Router			/v1/periods [options]
func OptionsPeriodList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Periods
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/periods/{id} [options]
func OptionsPeriodDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.WeeklyPeriod{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		Current period
// @Description	Returns the period covering now for the owner, creating it and any missing periods since the owner's latest period
// @Tags			Periods
// @Accept			json
// @Produce		json
// @Success		200		{object}	PeriodResponse
// @Failure		400		{object}	PeriodResponse
// @Failure		500		{object}	PeriodResponse
// @Param			request	body		PeriodRequest	true	"Request"
// @Router			/v1/periods [post]
func CurrentPeriod(c *gin.Context) {
	var request PeriodRequest

	err := httputil.BindData(c, &request)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PeriodResponse{
			Error: &s,
		})
		return
	}

	if request.OwnerID == uuid.Nil {
		s := errOwnerIDParameter.Error()
		c.JSON(http.StatusBadRequest, PeriodResponse{
			Error: &s,
		})
		return
	}

	now := request.Now
	if now.IsZero() {
		now = time.Now()
	}

	period, err := models.CurrentPeriod(models.DB, request.OwnerID, now)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PeriodResponse{
			Error: &s,
		})
		return
	}

	data := newPeriod(period)
	c.JSON(http.StatusOK, PeriodResponse{Data: &data})
}

// @Summary		List periods
// @Description	Returns the owner's periods, oldest first
// @Tags			Periods
// @Produce		json
// @Success		200	{object}	PeriodListResponse
// @Failure		400	{object}	PeriodListResponse
// @Failure		500	{object}	PeriodListResponse
// @Router			/v1/periods [get]
// @Param			owner	query	string	true	"Owner ID"
// @Param			from	query	string	false	"Only periods starting on or after this week, YYYY-MM-DD"
// @Param			to		query	string	false	"Only periods starting on or before this week, YYYY-MM-DD"
func GetPeriods(c *gin.Context) {
	var filter PeriodQueryFilter
	_ = c.Bind(&filter)

	if filter.OwnerID == hl_uuid.Nil {
		s := errOwnerIDParameter.Error()
		c.JSON(http.StatusBadRequest, PeriodListResponse{
			Error: &s,
		})
		return
	}

	from := types.NewWeek(1, 1, 1)
	if filter.From != "" {
		var err error
		from, err = types.ParseWeek(filter.From)
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusBadRequest, PeriodListResponse{
				Error: &s,
			})
			return
		}
	}

	to := types.NewWeek(9999, 1, 1)
	if filter.To != "" {
		var err error
		to, err = types.ParseWeek(filter.To)
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusBadRequest, PeriodListResponse{
				Error: &s,
			})
			return
		}
	}

	periods, err := models.PeriodsInRange(models.DB, filter.OwnerID.UUID, from, to)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PeriodListResponse{
			Error: &s,
		})
		return
	}

	apiResources := make([]Period, 0, len(periods))
	for _, period := range periods {
		apiResources = append(apiResources, newPeriod(period))
	}

	c.JSON(http.StatusOK, PeriodListResponse{Data: apiResources})
}

// @Summary		Get period
// @Description	Returns a specific period
// @Tags			Periods
// @Produce		json
// @Success		200	{object}	PeriodResponse
// @Failure		400	{object}	PeriodResponse
// @Failure		404	{object}	PeriodResponse
// @Failure		500	{object}	PeriodResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/periods/{id} [get]
func GetPeriod(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PeriodResponse{
			Error: &s,
		})
		return
	}

	var period models.WeeklyPeriod
	err = models.DB.First(&period, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PeriodResponse{
			Error: &s,
		})
		return
	}

	data := newPeriod(period)
	c.JSON(http.StatusOK, PeriodResponse{Data: &data})
}
