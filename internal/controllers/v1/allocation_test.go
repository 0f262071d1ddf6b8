package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/hearthledger/backend/internal/controllers/v1"
	"github.com/hearthledger/backend/internal/models"
	"github.com/hearthledger/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestAllocationsCreateManual() {
	f := createLedgerFixture(suite.T())

	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: f.income.Data.ID,
		PeriodID:  f.period.Data.ID,
		Amount:    decimalFromString(suite.T(), "100"),
		Kind:      models.KindIncome,
	})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocations", v1.AllocationEditable{
		OwnerID:              f.owner,
		SourceAccountID:      f.income.Data.ID,
		DestinationAccountID: f.expense.Data.ID,
		PeriodID:             f.period.Data.ID,
		Amount:               decimalFromString(suite.T(), "25"),
		Note:                 "Topping up groceries",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.AllocationResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	assert.Nil(suite.T(), response.Data.TemplateID)
	assert.True(suite.T(), response.Data.Processed)
}

func (suite *TestSuiteStandard) TestAllocationsCreateFails() {
	f := createLedgerFixture(suite.T())

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"No body", "", http.StatusBadRequest},
		{
			"Same account",
			v1.AllocationEditable{OwnerID: f.owner, SourceAccountID: f.income.Data.ID, DestinationAccountID: f.income.Data.ID, PeriodID: f.period.Data.ID, Amount: decimalFromString(suite.T(), "10")},
			http.StatusBadRequest,
		},
		{
			"Negative amount",
			v1.AllocationEditable{OwnerID: f.owner, SourceAccountID: f.income.Data.ID, DestinationAccountID: f.expense.Data.ID, PeriodID: f.period.Data.ID, Amount: decimalFromString(suite.T(), "-10")},
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/allocations", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationsRun() {
	f := createLedgerFixture(suite.T())

	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: f.income.Data.ID,
		PeriodID:  f.period.Data.ID,
		Amount:    decimalFromString(suite.T(), "200"),
		Kind:      models.KindIncome,
	})

	_ = createTestTemplate(suite.T(), v1.TemplateEditable{
		OwnerID:   f.owner,
		AccountID: f.expense.Data.ID,
		Type:      models.AllocationFixed,
		Amount:    decimalFromString(suite.T(), "50"),
		Priority:  1,
	})

	pool := decimalFromString(suite.T(), "200")
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocations/run", v1.RunRequest{
		OwnerID:         f.owner,
		PeriodID:        f.period.Data.ID,
		SourceAccountID: f.income.Data.ID,
		Pool:            &pool,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.RunResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	require.Len(suite.T(), response.Data.Results, 1)
	assert.Equal(suite.T(), models.OutcomeFunded, response.Data.Results[0].Outcome)
	assert.True(suite.T(), response.Data.Remaining.Equal(decimalFromString(suite.T(), "150")))

	// Running again without reprocess is a no-op
	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocations/run", v1.RunRequest{
		OwnerID:         f.owner,
		PeriodID:        f.period.Data.ID,
		SourceAccountID: f.income.Data.ID,
		Pool:            &pool,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data.Results, 1)
	assert.Equal(suite.T(), models.OutcomeAlreadyProcessed, response.Data.Results[0].Outcome)
}

// Without an explicit pool, the engine distributes the period's
// unallocated income.
func (suite *TestSuiteStandard) TestAllocationsRunDefaultPool() {
	f := createLedgerFixture(suite.T())

	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: f.income.Data.ID,
		PeriodID:  f.period.Data.ID,
		Amount:    decimalFromString(suite.T(), "100"),
		Kind:      models.KindIncome,
	})

	_ = createTestTemplate(suite.T(), v1.TemplateEditable{
		OwnerID:   f.owner,
		AccountID: f.expense.Data.ID,
		Type:      models.AllocationPercentage,
		Percentage: decimalFromString(suite.T(), "30"),
	})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocations/run", v1.RunRequest{
		OwnerID:         f.owner,
		PeriodID:        f.period.Data.ID,
		SourceAccountID: f.income.Data.ID,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.RunResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	assert.True(suite.T(), response.Data.Pool.Equal(decimalFromString(suite.T(), "100")), "pool is %s", response.Data.Pool)
	assert.True(suite.T(), response.Data.Remaining.Equal(decimalFromString(suite.T(), "70")), "remaining is %s", response.Data.Remaining)
}

func (suite *TestSuiteStandard) TestAllocationsRunFails() {
	f := createLedgerFixture(suite.T())
	pool := decimal.NewFromInt(100)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"No body", "", http.StatusBadRequest},
		{
			"Unknown source account",
			v1.RunRequest{OwnerID: f.owner, PeriodID: f.period.Data.ID, SourceAccountID: uuid.New(), Pool: &pool},
			http.StatusNotFound,
		},
		{
			"Cross-owner period",
			v1.RunRequest{OwnerID: uuid.New(), PeriodID: f.period.Data.ID, SourceAccountID: f.income.Data.ID, Pool: &pool},
			http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/allocations/run", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationsGetFilter() {
	f := createLedgerFixture(suite.T())

	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: f.income.Data.ID,
		PeriodID:  f.period.Data.ID,
		Amount:    decimalFromString(suite.T(), "100"),
		Kind:      models.KindIncome,
	})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocations", v1.AllocationEditable{
		OwnerID:              f.owner,
		SourceAccountID:      f.income.Data.ID,
		DestinationAccountID: f.expense.Data.ID,
		PeriodID:             f.period.Data.ID,
		Amount:               decimalFromString(suite.T(), "25"),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Owner", fmt.Sprintf("owner=%s", f.owner), 1},
		{"Period", fmt.Sprintf("period=%s", f.period.Data.ID), 1},
		{"Other owner", fmt.Sprintf("owner=%s", uuid.New()), 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var response v1.AllocationListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/allocations?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &response)

			assert.Len(t, response.Data, tt.len)
		})
	}
}
