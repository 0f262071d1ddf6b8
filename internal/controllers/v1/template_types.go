package v1

import (
	"fmt"

	"github.com/hearthledger/backend/internal/models"
	hl_uuid "github.com/hearthledger/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TemplateEditable represents all user configurable parameters
type TemplateEditable struct {
	OwnerID    uuid.UUID             `json:"ownerId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`   // ID of the owner the template belongs to
	AccountID  uuid.UUID             `json:"accountId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"` // Destination account the template funds
	Type       models.AllocationType `json:"type" example:"fixed"`                                     // How the share of the pool is computed
	Amount     decimal.Decimal       `json:"amount" example:"50" default:"0"`                          // Fixed amount per period, for type fixed
	Percentage decimal.Decimal       `json:"percentage" example:"30" default:"0"`                      // Share of the pool in percent, for type percentage
	MinAmount  decimal.Decimal       `json:"minAmount" example:"20" default:"0"`                       // Funding floor, for type range
	MaxAmount  decimal.Decimal       `json:"maxAmount" example:"50" default:"0"`                       // Funding ceiling, for type range
	Priority   int                   `json:"priority" example:"1" default:"0"`                         // Lower runs first
	Note       string                `json:"note" example:"Rent first" default:""`                     // Notes about the template
	Archived   bool                  `json:"archived" example:"true" default:"false"`                  // Is the template archived?
}

func (editable TemplateEditable) model() models.BudgetTemplate {
	return models.BudgetTemplate{
		OwnerID:    editable.OwnerID,
		AccountID:  editable.AccountID,
		Type:       editable.Type,
		Amount:     editable.Amount,
		Percentage: editable.Percentage,
		MinAmount:  editable.MinAmount,
		MaxAmount:  editable.MaxAmount,
		Priority:   editable.Priority,
		Note:       editable.Note,
		Archived:   editable.Archived,
	}
}

type TemplateLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/templates/3b1ea324-d438-4419-882a-2fc91d71772f"`    // The template itself
	Account string `json:"account" example:"https://example.com/api/v1/accounts/af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"` // The destination account
}

type Template struct {
	models.DefaultModel
	TemplateEditable
	Links TemplateLinks `json:"links"`
}

func newTemplate(c *gin.Context, model models.BudgetTemplate) Template {
	url := c.GetString(string(models.DBContextURL))

	return Template{
		DefaultModel: model.DefaultModel,
		TemplateEditable: TemplateEditable{
			OwnerID:    model.OwnerID,
			AccountID:  model.AccountID,
			Type:       model.Type,
			Amount:     model.Amount,
			Percentage: model.Percentage,
			MinAmount:  model.MinAmount,
			MaxAmount:  model.MaxAmount,
			Priority:   model.Priority,
			Note:       model.Note,
			Archived:   model.Archived,
		},
		Links: TemplateLinks{
			Self:    fmt.Sprintf("%s/v1/templates/%s", url, model.ID),
			Account: fmt.Sprintf("%s/v1/accounts/%s", url, model.AccountID),
		},
	}
}

type TemplateListResponse struct {
	Data       []Template  `json:"data"`                                                          // List of templates
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type TemplateResponse struct {
	Data  *Template `json:"data"`                                                          // Data for the template
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type TemplateQueryFilter struct {
	OwnerID   hl_uuid.UUID          `form:"owner"`                      // By ID of the owner
	AccountID hl_uuid.UUID          `form:"account"`                    // By ID of the destination account
	Type      models.AllocationType `form:"type"`                       // By allocation type
	Archived  bool                  `form:"archived"`                   // Is the template archived?
	Offset    uint                  `form:"offset" filterField:"false"` // The offset of the first template returned. Defaults to 0.
	Limit     int                   `form:"limit" filterField:"false"`  // Maximum number of templates to return. Defaults to 50.
}

func (f TemplateQueryFilter) model() models.BudgetTemplate {
	return models.BudgetTemplate{
		OwnerID:   f.OwnerID.UUID,
		AccountID: f.AccountID.UUID,
		Type:      f.Type,
		Archived:  f.Archived,
	}
}
