package v1

import (
	"fmt"
	"time"

	"github.com/hearthledger/backend/internal/models"
	hl_uuid "github.com/hearthledger/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionEditable represents the user configurable parameters of a
// ledger posting. Transactions are append-only, there is no update.
type TransactionEditable struct {
	AccountID   uuid.UUID              `json:"accountId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"` // ID of the account the money moves on
	PeriodID    uuid.UUID              `json:"periodId" example:"9e95e3b5-3f8a-4c12-8a7e-3eb0ccd4a2f4"`  // ID of the weekly period the posting belongs to
	Amount      decimal.Decimal        `json:"amount" example:"-14.50"`                                  // Signed amount, credits are positive
	Kind        models.TransactionKind `json:"kind" example:"expense"`                                   // Why the money moved
	Description string                 `json:"description" example:"Milk and bread" default:""`          // Description of the posting
}

type TransactionLinks struct {
	Account string `json:"account" example:"https://example.com/api/v1/accounts/af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"` // The account of the transaction
}

type Transaction struct {
	models.DefaultModel
	TransactionEditable
	OwnerID    uuid.UUID        `json:"ownerId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // ID of the owner
	Date       time.Time        `json:"date" example:"2024-05-15T14:43:00Z"`                    // Date of the posting, set on creation
	TransferID *uuid.UUID       `json:"transferId"`                                             // Shared by both legs of a transfer pair, null otherwise
	LoanID     *uuid.UUID       `json:"loanId"`                                                 // Set for loan bookkeeping transactions, null otherwise
	Links      TransactionLinks `json:"links"`
}

func newTransaction(c *gin.Context, model models.Transaction) Transaction {
	url := c.GetString(string(models.DBContextURL))

	return Transaction{
		DefaultModel: model.DefaultModel,
		TransactionEditable: TransactionEditable{
			AccountID:   model.AccountID,
			PeriodID:    model.PeriodID,
			Amount:      model.Amount,
			Kind:        model.Kind,
			Description: model.Description,
		},
		OwnerID:    model.OwnerID,
		Date:       model.Date,
		TransferID: model.TransferID,
		LoanID:     model.LoanID,
		Links: TransactionLinks{
			Account: fmt.Sprintf("%s/v1/accounts/%s", url, model.AccountID),
		},
	}
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`                                                          // List of transactions
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type TransactionResponse struct {
	Data  *Transaction `json:"data"`                                                          // Data for the transaction
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// TransferResponse contains both legs of a transfer pair.
type TransferResponse struct {
	Outgoing *Transaction `json:"outgoing"`                                                      // The debit leg on the source account
	Incoming *Transaction `json:"incoming"`                                                      // The credit leg on the destination account
	Error    *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// TransferEditable represents the user configurable parameters of a transfer pair.
type TransferEditable struct {
	SourceAccountID      uuid.UUID       `json:"sourceAccountId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"`      // Account the money leaves
	DestinationAccountID uuid.UUID       `json:"destinationAccountId" example:"d7b6eb36-217e-4b04-9ba7-772e5ab9d0ce"` // Account the money arrives on
	PeriodID             uuid.UUID       `json:"periodId" example:"9e95e3b5-3f8a-4c12-8a7e-3eb0ccd4a2f4"`             // ID of the weekly period
	Amount               decimal.Decimal `json:"amount" example:"40"`                                                 // Positive amount to move
	Description          string          `json:"description" example:"Weekly grocery budget" default:""`              // Description for both legs
}

type TransactionQueryFilter struct {
	OwnerID  hl_uuid.UUID           `form:"owner"`                      // By ID of the owner
	PeriodID hl_uuid.UUID           `form:"period"`                     // By ID of the period
	Kind     models.TransactionKind `form:"kind"`                       // By transaction kind
	Offset   uint                   `form:"offset" filterField:"false"` // The offset of the first transaction returned. Defaults to 0.
	Limit    int                    `form:"limit" filterField:"false"`  // Maximum number of transactions to return. Defaults to 50.
}

func (f TransactionQueryFilter) model() models.Transaction {
	return models.Transaction{
		OwnerID:  f.OwnerID.UUID,
		PeriodID: f.PeriodID.UUID,
		Kind:     f.Kind,
	}
}
