package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/hearthledger/backend/internal/controllers/v1"
	"github.com/hearthledger/backend/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestPeriodsCurrent() {
	owner := uuid.New()

	first := createTestPeriod(suite.T(), owner)
	assert.True(suite.T(), first.Data.Current)

	// Resolving again returns the same period
	second := createTestPeriod(suite.T(), owner)
	assert.Equal(suite.T(), first.Data.ID, second.Data.ID)
}

func (suite *TestSuiteStandard) TestPeriodsCurrentFails() {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Owner required", v1.PeriodRequest{}, http.StatusBadRequest},
		{"No body", "", http.StatusBadRequest},
		{"Broken body", `{ "ownerId": 2 }`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/periods", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestPeriodsGet() {
	owner := uuid.New()
	period := createTestPeriod(suite.T(), owner)

	tests := []struct {
		name   string
		query  string
		status int
		len    int
	}{
		{"All periods for owner", fmt.Sprintf("owner=%s", owner), http.StatusOK, 1},
		{"Other owner", fmt.Sprintf("owner=%s", uuid.New()), http.StatusOK, 0},
		{"Owner required", "", http.StatusBadRequest, 0},
		{"Invalid from", fmt.Sprintf("owner=%s&from=never", owner), http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/periods?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusOK {
				var response v1.PeriodListResponse
				test.DecodeResponse(t, &r, &response)
				assert.Len(t, response.Data, tt.len)
			}
		})
	}

	suite.T().Run("Get single period", func(t *testing.T) {
		r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/periods/%s", period.Data.ID), "")
		test.AssertHTTPStatus(t, &r, http.StatusOK)

		var response v1.PeriodResponse
		test.DecodeResponse(t, &r, &response)
		require.NotNil(t, response.Data)
		assert.Equal(t, period.Data.StartDate, response.Data.StartDate)
	})

	suite.T().Run("Unknown period", func(t *testing.T) {
		r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/periods/%s", uuid.New()), "")
		test.AssertHTTPStatus(t, &r, http.StatusNotFound)
	})
}
