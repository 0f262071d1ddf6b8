package v1

import (
	"fmt"

	"github.com/hearthledger/backend/internal/models"
	hl_uuid "github.com/hearthledger/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountEditable represents all user configurable parameters
type AccountEditable struct {
	OwnerID      uuid.UUID              `json:"ownerId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`    // ID of the owner the account belongs to
	ParentID     *uuid.UUID             `json:"parentId" example:"d7b6eb36-217e-4b04-9ba7-772e5ab9d0ce"`   // ID of the parent account, null for root accounts
	Name         string                 `json:"name" example:"Groceries" default:""`                       // Name of the account
	Note         string                 `json:"note" example:"Everything we eat" default:""`               // Notes about the account
	Category     models.AccountCategory `json:"category" example:"expense"`                                // Category of the account, must match the root ancestor
	TargetAmount decimal.Decimal        `json:"targetAmount" example:"150" default:"0"`                    // Optional goal amount
	Archived     bool                   `json:"archived" example:"true" default:"false"`                   // Is the account archived?
	SortOrder    int                    `json:"sortOrder" example:"2" default:"0"`                         // Sort order among siblings
}

func (editable AccountEditable) model() models.Account {
	return models.Account{
		OwnerID:      editable.OwnerID,
		ParentID:     editable.ParentID,
		Name:         editable.Name,
		Note:         editable.Note,
		Category:     editable.Category,
		TargetAmount: editable.TargetAmount,
		Archived:     editable.Archived,
		SortOrder:    editable.SortOrder,
	}
}

type AccountLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/accounts/af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"`                      // The account itself
	Transactions string `json:"transactions" example:"https://example.com/api/v1/accounts/af892e10-7e0a-4fb8-b1bc-4b6d88401ed9/transactions"` // Transactions for this account
}

type Account struct {
	models.DefaultModel
	AccountEditable
	Balance decimal.Decimal `json:"balance" example:"27.32"` // Cached balance of the account
	Links   AccountLinks    `json:"links"`
}

func newAccount(c *gin.Context, model models.Account) Account {
	url := c.GetString(string(models.DBContextURL))

	return Account{
		DefaultModel: model.DefaultModel,
		AccountEditable: AccountEditable{
			OwnerID:      model.OwnerID,
			ParentID:     model.ParentID,
			Name:         model.Name,
			Note:         model.Note,
			Category:     model.Category,
			TargetAmount: model.TargetAmount,
			Archived:     model.Archived,
			SortOrder:    model.SortOrder,
		},
		Balance: model.Balance,
		Links: AccountLinks{
			Self:         fmt.Sprintf("%s/v1/accounts/%s", url, model.ID),
			Transactions: fmt.Sprintf("%s/v1/accounts/%s/transactions", url, model.ID),
		},
	}
}

type AccountListResponse struct {
	Data       []Account   `json:"data"`                                                          // List of accounts
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type AccountResponse struct {
	Data  *Account `json:"data"`                                                          // Data for the account
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AccountQueryFilter struct {
	OwnerID  hl_uuid.UUID           `form:"owner"`                      // By ID of the owner
	ParentID hl_uuid.UUID           `form:"parent"`                     // By ID of the parent account
	Category models.AccountCategory `form:"category"`                   // By category
	Name     string                 `form:"name" filterField:"false"`   // By name
	Archived bool                   `form:"archived"`                   // Is the account archived?
	Offset   uint                   `form:"offset" filterField:"false"` // The offset of the first account returned. Defaults to 0.
	Limit    int                    `form:"limit" filterField:"false"`  // Maximum number of accounts to return. Defaults to 50.
}

func (f AccountQueryFilter) model() models.Account {
	var parentID *uuid.UUID
	if f.ParentID != hl_uuid.Nil {
		parentID = &f.ParentID.UUID
	}

	return models.Account{
		OwnerID:  f.OwnerID.UUID,
		ParentID: parentID,
		Category: f.Category,
		Archived: f.Archived,
	}
}

// AccountTreeResponse contains the nested account forest of an owner.
type AccountTreeResponse struct {
	Data  []models.AccountNode `json:"data"`                                                          // The account forest, roots first
	Error *string              `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}
