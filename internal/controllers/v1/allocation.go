package v1

import (
	"net/http"

	"github.com/hearthledger/backend/internal/events"
	"github.com/hearthledger/backend/internal/httputil"
	"github.com/hearthledger/backend/internal/models"
	hl_uuid "github.com/hearthledger/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterAllocationRoutes registers the routes for allocations with
// the RouterGroup that is passed.
func RegisterAllocationRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsAllocationList)
	r.GET("", GetAllocations)
	r.POST("", CreateAllocation)

	r.OPTIONS("/run", OptionsAllocationRun)
	r.POST("/run", RunAllocation)
}

// AllocationEditable represents the user configurable parameters of a
// manual allocation.
type AllocationEditable struct {
	OwnerID              uuid.UUID       `json:"ownerId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`              // ID of the owner
	SourceAccountID      uuid.UUID       `json:"sourceAccountId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"`      // Account the funds come from
	DestinationAccountID uuid.UUID       `json:"destinationAccountId" example:"d7b6eb36-217e-4b04-9ba7-772e5ab9d0ce"` // Account the funds go to
	PeriodID             uuid.UUID       `json:"periodId" example:"9e95e3b5-3f8a-4c12-8a7e-3eb0ccd4a2f4"`             // ID of the weekly period
	Amount               decimal.Decimal `json:"amount" example:"25"`                                                 // Positive amount to allocate
	Note                 string          `json:"note" example:"Topping up groceries" default:""`                      // Notes about the allocation
}

func (editable AllocationEditable) model() models.Allocation {
	return models.Allocation{
		OwnerID:              editable.OwnerID,
		SourceAccountID:      editable.SourceAccountID,
		DestinationAccountID: editable.DestinationAccountID,
		PeriodID:             editable.PeriodID,
		Amount:               editable.Amount,
		Note:                 editable.Note,
	}
}

type AllocationListResponse struct {
	Data  []models.Allocation `json:"data"`                                                          // List of allocations
	Error *string             `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AllocationResponse struct {
	Data  *models.Allocation `json:"data"`                                                          // Data for the allocation
	Error *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// RunRequest configures one allocation engine run.
type RunRequest struct {
	OwnerID         uuid.UUID        `json:"ownerId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`         // ID of the owner whose templates run
	PeriodID        uuid.UUID        `json:"periodId" example:"9e95e3b5-3f8a-4c12-8a7e-3eb0ccd4a2f4"`        // ID of the weekly period to allocate for
	SourceAccountID uuid.UUID        `json:"sourceAccountId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"` // Account the funds are distributed from
	Pool            *decimal.Decimal `json:"pool" example:"200"`                                             // Pool to distribute. Defaults to the period's unallocated income.
	Reprocess       bool             `json:"reprocess" example:"false" default:"false"`                      // Run templates again even if they were already processed for the period
}

type RunResponse struct {
	Data  *models.AllocationRun `json:"data"`                                                          // Report of the run
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AllocationQueryFilter struct {
	OwnerID    hl_uuid.UUID `form:"owner"`    // By ID of the owner
	PeriodID   hl_uuid.UUID `form:"period"`   // By ID of the period
	TemplateID hl_uuid.UUID `form:"template"` // By ID of the template that produced the allocation
}

func (f AllocationQueryFilter) model() models.Allocation {
	var templateID *uuid.UUID
	if f.TemplateID != hl_uuid.Nil {
		templateID = &f.TemplateID.UUID
	}

	return models.Allocation{
		OwnerID:    f.OwnerID.UUID,
		PeriodID:   f.PeriodID.UUID,
		TemplateID: templateID,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Router			/v1/allocations [options]
func OptionsAllocationList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Router			/v1/allocations/run [options]
func OptionsAllocationRun(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Create allocation
// @Description	Manually allocates funds from a source account into a destination account
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		201			{object}	AllocationResponse
// @Failure		400			{object}	AllocationResponse
// @Failure		404			{object}	AllocationResponse
// @Failure		500			{object}	AllocationResponse
// @Param			allocation	body		AllocationEditable	true	"Allocation"
// @Router			/v1/allocations [post]
func CreateAllocation(c *gin.Context) {
	var editable AllocationEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &s,
		})
		return
	}

	allocation, err := models.Allocate(models.DB, editable.model())
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusCreated, AllocationResponse{Data: &allocation})
}

// @Summary		Run allocation engine
// @Description	Distributes the pool across the owner's active templates for the period, in priority order. The run is idempotent unless reprocess is set.
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		200		{object}	RunResponse
// @Failure		400		{object}	RunResponse
// @Failure		404		{object}	RunResponse
// @Failure		500		{object}	RunResponse
// @Param			request	body		RunRequest	true	"Request"
// @Router			/v1/allocations/run [post]
func RunAllocation(c *gin.Context) {
	var request RunRequest

	err := httputil.BindData(c, &request)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RunResponse{
			Error: &s,
		})
		return
	}

	pool := decimal.Zero
	if request.Pool != nil {
		pool = *request.Pool
	} else {
		pool, err = models.AvailablePool(models.DB, request.OwnerID, request.PeriodID)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), RunResponse{
				Error: &s,
			})
			return
		}
	}

	run, err := models.RunAllocation(models.DB, request.OwnerID, request.PeriodID, request.SourceAccountID, pool, request.Reprocess)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RunResponse{
			Error: &s,
		})
		return
	}

	events.PublishAllocationCompleted(c.Request.Context(), request.OwnerID, request.PeriodID, run.Pool, run.Remaining)

	c.JSON(http.StatusOK, RunResponse{Data: &run})
}

// @Summary		List allocations
// @Description	Returns a list of allocations, newest first
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	AllocationListResponse
// @Failure		400	{object}	AllocationListResponse
// @Failure		500	{object}	AllocationListResponse
// @Router			/v1/allocations [get]
// @Param			owner		query	string	false	"Filter by owner ID"
// @Param			period		query	string	false	"Filter by period ID"
// @Param			template	query	string	false	"Filter by template ID"
func GetAllocations(c *gin.Context) {
	var filter AllocationQueryFilter
	_ = c.Bind(&filter)

	queryFields, _ := httputil.GetURLFields(c.Request.URL, filter)

	var allocations []models.Allocation
	err := models.DB.
		Order("strftime('%Y-%m-%d %H:%M:%f', created_at) DESC").
		Where(filter.model(), queryFields...).
		Find(&allocations).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationListResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, AllocationListResponse{Data: allocations})
}
