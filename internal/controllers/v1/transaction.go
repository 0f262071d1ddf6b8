package v1

import (
	"net/http"

	"github.com/hearthledger/backend/internal/events"
	"github.com/hearthledger/backend/internal/httputil"
	"github.com/hearthledger/backend/internal/models"
	"github.com/hearthledger/backend/internal/types"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func RegisterTransactionRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsTransactionList)
	r.GET("", GetTransactions)
	r.POST("", CreateTransaction)

	r.OPTIONS("/transfers", OptionsTransfers)
	r.POST("/transfers", CreateTransfer)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions [options]
func OptionsTransactionList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions/transfers [options]
func OptionsTransfers(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Post transaction
// @Description	Appends a transaction to the ledger and updates the account balance
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201			{object}	TransactionResponse
// @Failure		400			{object}	TransactionResponse
// @Failure		404			{object}	TransactionResponse
// @Failure		500			{object}	TransactionResponse
// @Param			transaction	body		TransactionEditable	true	"Transaction"
// @Router			/v1/transactions [post]
func CreateTransaction(c *gin.Context) {
	var editable TransactionEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	transaction, err := models.Post(models.DB, editable.AccountID, editable.PeriodID, editable.Amount, editable.Kind, editable.Description)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	events.PublishTransactionPosted(c.Request.Context(), transaction.ID, transaction.AccountID, transaction.Amount)

	data := newTransaction(c, transaction)
	c.JSON(http.StatusCreated, TransactionResponse{Data: &data})
}

// @Summary		Post transfer
// @Description	Debits the source account and credits the destination account atomically
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201			{object}	TransferResponse
// @Failure		400			{object}	TransferResponse
// @Failure		404			{object}	TransferResponse
// @Failure		500			{object}	TransferResponse
// @Param			transfer	body		TransferEditable	true	"Transfer"
// @Router			/v1/transactions/transfers [post]
func CreateTransfer(c *gin.Context) {
	var editable TransferEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransferResponse{
			Error: &s,
		})
		return
	}

	outgoing, incoming, err := models.PostTransfer(models.DB, editable.SourceAccountID, editable.DestinationAccountID, editable.PeriodID, editable.Amount, models.KindTransfer, editable.Description)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransferResponse{
			Error: &s,
		})
		return
	}

	events.PublishTransactionPosted(c.Request.Context(), outgoing.ID, outgoing.AccountID, outgoing.Amount)
	events.PublishTransactionPosted(c.Request.Context(), incoming.ID, incoming.AccountID, incoming.Amount)

	out := newTransaction(c, outgoing)
	in := newTransaction(c, incoming)
	c.JSON(http.StatusCreated, TransferResponse{Outgoing: &out, Incoming: &in})
}

// @Summary		List transactions
// @Description	Returns a list of transactions, newest first
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionListResponse
// @Failure		400	{object}	TransactionListResponse
// @Failure		500	{object}	TransactionListResponse
// @Router			/v1/transactions [get]
// @Param			owner	query	string	false	"Filter by owner ID"
// @Param			period	query	string	false	"Filter by period ID"
// @Param			kind	query	string	false	"Filter by transaction kind"
// @Param			offset	query	uint	false	"The offset of the first transaction returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of transactions to return. Defaults to 50."
func GetTransactions(c *gin.Context) {
	var filter TransactionQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("strftime('%Y-%m-%d %H:%M:%f', date) DESC").
		Order("strftime('%Y-%m-%d %H:%M:%f', created_at) DESC").
		Where(filter.model(), queryFields...)

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var transactions []models.Transaction
	err := q.Find(&transactions).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &s,
		})
		return
	}

	apiResources := make([]Transaction, 0)
	for _, transaction := range transactions {
		apiResources = append(apiResources, newTransaction(c, transaction))
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Data: apiResources,
		Pagination: &Pagination{
			Count:  len(apiResources),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// accountTransactions returns the transactions for an account, restricted
// to a week range when the from and to query parameters are both set.
func accountTransactions(c *gin.Context, account models.Account) ([]models.Transaction, error) {
	fromParam := c.Query("from")
	toParam := c.Query("to")

	if fromParam == "" || toParam == "" {
		return account.Transactions(models.DB), nil
	}

	from, err := types.ParseWeek(fromParam)
	if err != nil {
		return nil, err
	}

	to, err := types.ParseWeek(toParam)
	if err != nil {
		return nil, err
	}

	return models.TransactionsInRange(models.DB, account.ID, from, to)
}
