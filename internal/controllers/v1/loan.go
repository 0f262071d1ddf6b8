package v1

import (
	"net/http"

	"github.com/hearthledger/backend/internal/config"
	"github.com/hearthledger/backend/internal/httputil"
	"github.com/hearthledger/backend/internal/models"
	hl_uuid "github.com/hearthledger/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterLoanRoutes registers the routes for loans with
// the RouterGroup that is passed.
//
// Loans have no PATCH or DELETE: the ledger rows backing a loan are
// append-only, a loan leaves the books by being repaid.
func RegisterLoanRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsLoanList)
	r.GET("", GetLoans)
	r.POST("", CreateLoan)

	r.OPTIONS("/:id", OptionsLoanDetail)
	r.GET("/:id", GetLoan)
	r.GET("/:id/transactions", GetLoanTransactions)
	r.POST("/:id/repayments", CreateRepayment)
	r.POST("/:id/accruals", CreateAccrual)
}

// LoanEditable represents the user configurable parameters of a loan
// disbursement.
type LoanEditable struct {
	OwnerID           uuid.UUID       `json:"ownerId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`           // ID of the owner
	LenderAccountID   uuid.UUID       `json:"lenderAccountId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"`   // Account the principal leaves
	BorrowerAccountID uuid.UUID       `json:"borrowerAccountId" example:"d7b6eb36-217e-4b04-9ba7-772e5ab9d0ce"` // Account the principal arrives on
	PeriodID          uuid.UUID       `json:"periodId" example:"9e95e3b5-3f8a-4c12-8a7e-3eb0ccd4a2f4"`          // Period the disbursement is recorded in
	Principal         decimal.Decimal `json:"principal" example:"1000"`                                         // Amount lent
	InterestRate      decimal.Decimal `json:"interestRate" example:"0.02" default:"0"`                          // Per-period rate, 0 means the owner default applies
}

type LoanResponse struct {
	Data  *models.Loan `json:"data"`                                                          // Data for the loan
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type LoanListResponse struct {
	Data  []models.Loan `json:"data"`                                                          // List of loans
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// RepaymentRequest is the body for a loan repayment.
type RepaymentRequest struct {
	PeriodID uuid.UUID       `json:"periodId" example:"9e95e3b5-3f8a-4c12-8a7e-3eb0ccd4a2f4"` // Period the repayment is recorded in
	Amount   decimal.Decimal `json:"amount" example:"520"`                                    // Amount to repay, at most the outstanding balance
}

// AccrualRequest is the body for an interest accrual.
type AccrualRequest struct {
	PeriodID uuid.UUID `json:"periodId" example:"9e95e3b5-3f8a-4c12-8a7e-3eb0ccd4a2f4"` // Period to accrue interest for
}

type AccrualResponse struct {
	Data  *Accrual `json:"data"`                                                          // Data for the accrual
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type Accrual struct {
	Interest decimal.Decimal `json:"interest" example:"20.40"` // Interest added to the loan, zero if the period was already accrued
	Loan     models.Loan     `json:"loan"`                     // The loan after the accrual
}

type LoanQueryFilter struct {
	OwnerID hl_uuid.UUID      `form:"owner"`  // By ID of the owner
	Status  models.LoanStatus `form:"status"` // By loan status
}

func (f LoanQueryFilter) model() models.Loan {
	return models.Loan{
		OwnerID: f.OwnerID.UUID,
		Status:  f.Status,
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Loans
// @Success		204
// @Router			/v1/loans [options]
func OptionsLoanList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Loans
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/loans/{id} [options]
func OptionsLoanDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Loan{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		Disburse loan
// @Description	Moves the principal from the lender to the borrower and starts interest tracking
// @Tags			Loans
// @Accept			json
// @Produce		json
// @Success		201		{object}	LoanResponse
// @Failure		400		{object}	LoanResponse
// @Failure		404		{object}	LoanResponse
// @Failure		500		{object}	LoanResponse
// @Param			loan	body		LoanEditable	true	"Loan"
// @Router			/v1/loans [post]
func CreateLoan(c *gin.Context) {
	var editable LoanEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanResponse{
			Error: &s,
		})
		return
	}

	loan, err := models.DisburseLoan(models.DB, editable.OwnerID, editable.LenderAccountID, editable.BorrowerAccountID, editable.PeriodID, editable.Principal, editable.InterestRate)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusCreated, LoanResponse{Data: &loan})
}

// @Summary		List loans
// @Description	Returns a list of loans
// @Tags			Loans
// @Produce		json
// @Success		200	{object}	LoanListResponse
// @Failure		400	{object}	LoanListResponse
// @Failure		500	{object}	LoanListResponse
// @Router			/v1/loans [get]
// @Param			owner	query	string	false	"Filter by owner ID"
// @Param			status	query	string	false	"Filter by status, active or paid"
func GetLoans(c *gin.Context) {
	var filter LoanQueryFilter
	_ = c.Bind(&filter)

	queryFields, _ := httputil.GetURLFields(c.Request.URL, filter)

	var loans []models.Loan
	err := models.DB.
		Order("strftime('%Y-%m-%d %H:%M:%f', created_at) DESC").
		Where(filter.model(), queryFields...).
		Find(&loans).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanListResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, LoanListResponse{Data: loans})
}

// @Summary		Get loan
// @Description	Returns a specific loan
// @Tags			Loans
// @Produce		json
// @Success		200	{object}	LoanResponse
// @Failure		400	{object}	LoanResponse
// @Failure		404	{object}	LoanResponse
// @Failure		500	{object}	LoanResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/loans/{id} [get]
func GetLoan(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanResponse{
			Error: &s,
		})
		return
	}

	var loan models.Loan
	err = models.DB.First(&loan, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, LoanResponse{Data: &loan})
}

// @Summary		List loan transactions
// @Description	Returns the ledger rows recorded for a loan, newest first
// @Tags			Loans
// @Produce		json
// @Success		200	{object}	TransactionListResponse
// @Failure		400	{object}	TransactionListResponse
// @Failure		404	{object}	TransactionListResponse
// @Failure		500	{object}	TransactionListResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/loans/{id}/transactions [get]
func GetLoanTransactions(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &s,
		})
		return
	}

	var loan models.Loan
	err = models.DB.First(&loan, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &s,
		})
		return
	}

	transactions := loan.Transactions(models.DB)
	apiResources := make([]Transaction, 0, len(transactions))
	for _, transaction := range transactions {
		apiResources = append(apiResources, newTransaction(c, transaction))
	}

	c.JSON(http.StatusOK, TransactionListResponse{Data: apiResources})
}

// @Summary		Repay loan
// @Description	Transfers the amount from the borrower back to the lender and reduces the outstanding balance. Overpayments are rejected.
// @Tags			Loans
// @Accept			json
// @Produce		json
// @Success		201			{object}	LoanResponse
// @Failure		400			{object}	LoanResponse
// @Failure		404			{object}	LoanResponse
// @Failure		500			{object}	LoanResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			repayment	body		RepaymentRequest	true	"Repayment"
// @Router			/v1/loans/{id}/repayments [post]
func CreateRepayment(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanResponse{
			Error: &s,
		})
		return
	}

	var request RepaymentRequest
	err = httputil.BindData(c, &request)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanResponse{
			Error: &s,
		})
		return
	}

	loan, err := models.RepayLoan(models.DB, uri.ID.UUID, request.PeriodID, request.Amount)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), LoanResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusCreated, LoanResponse{Data: &loan})
}

// @Summary		Accrue interest
// @Description	Adds one period's interest to the loan. Accrual is idempotent per period, repeating it is a no-op.
// @Tags			Loans
// @Accept			json
// @Produce		json
// @Success		201		{object}	AccrualResponse
// @Failure		400		{object}	AccrualResponse
// @Failure		404		{object}	AccrualResponse
// @Failure		500		{object}	AccrualResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			accrual	body		AccrualRequest	true	"Accrual"
// @Router			/v1/loans/{id}/accruals [post]
func CreateAccrual(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AccrualResponse{
			Error: &s,
		})
		return
	}

	var request AccrualRequest
	err = httputil.BindData(c, &request)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AccrualResponse{
			Error: &s,
		})
		return
	}

	policy := models.AccrualPolicy{MirrorToLender: config.LoanInterestTransfers()}
	interest, err := models.AccrueInterest(models.DB, uri.ID.UUID, request.PeriodID, policy)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AccrualResponse{
			Error: &s,
		})
		return
	}

	var loan models.Loan
	err = models.DB.First(&loan, uri.ID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AccrualResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusCreated, AccrualResponse{Data: &Accrual{Interest: interest, Loan: loan}})
}
