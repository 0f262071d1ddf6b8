package v1_test

import (
	"net/http"
	"testing"

	v1 "github.com/hearthledger/backend/internal/controllers/v1"
	"github.com/hearthledger/backend/internal/models"
	"github.com/hearthledger/backend/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func (suite *TestSuiteStandard) TestIntegrityClean() {
	f := createLedgerFixture(suite.T())

	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: f.income.Data.ID,
		PeriodID:  f.period.Data.ID,
		Amount:    decimalFromString(suite.T(), "100"),
		Kind:      models.KindIncome,
	})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/integrity", v1.IntegrityRequest{OwnerID: f.owner})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.IntegrityResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Empty(suite.T(), response.Data)
}

func (suite *TestSuiteStandard) TestIntegrityFixesStaleBalance() {
	f := createLedgerFixture(suite.T())

	_ = createTestTransaction(suite.T(), v1.TransactionEditable{
		AccountID: f.income.Data.ID,
		PeriodID:  f.period.Data.ID,
		Amount:    decimalFromString(suite.T(), "100"),
		Kind:      models.KindIncome,
	})

	// Corrupt the cached balance behind the validation hooks
	err := models.DB.Session(&gorm.Session{SkipHooks: true}).
		Model(&models.Account{}).
		Where("id = ?", f.income.Data.ID).
		Update("balance", "999").Error
	require.Nil(suite.T(), err)

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/integrity", v1.IntegrityRequest{OwnerID: f.owner, Fix: true})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.IntegrityResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data, 1)
	assert.Equal(suite.T(), models.IssueStaleBalance, response.Data[0].Kind)

	// The sweep repaired the cached balance
	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/integrity", v1.IntegrityRequest{OwnerID: f.owner})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	test.DecodeResponse(suite.T(), &r, &response)
	assert.Empty(suite.T(), response.Data)
}

func (suite *TestSuiteStandard) TestIntegrityFails() {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"No body", "", http.StatusBadRequest},
		{"Owner required", v1.IntegrityRequest{}, http.StatusBadRequest},
		{"Owner is the nil UUID", map[string]any{"ownerId": uuid.Nil.String()}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/integrity", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}
