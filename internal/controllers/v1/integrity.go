package v1

import (
	"net/http"

	"github.com/hearthledger/backend/internal/httputil"
	"github.com/hearthledger/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterIntegrityRoutes registers the integrity sweep routes with
// the RouterGroup that is passed.
func RegisterIntegrityRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsIntegrity)
	r.POST("", RunIntegrity)
}

// IntegrityRequest configures one integrity sweep.
type IntegrityRequest struct {
	OwnerID uuid.UUID `json:"ownerId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // Owner whose accounts are swept
	Fix     bool      `json:"fix" example:"false" default:"false"`                    // Recompute stale cached balances? Structural issues are only reported.
}

type IntegrityResponse struct {
	Data  []models.Issue `json:"data"`                                                          // Issues found by the sweep, empty for a clean tree
	Error *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Integrity
// @Success		204
// @Router			/v1/integrity [options]
func OptionsIntegrity(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Integrity sweep
// @Description	Checks the owner's account forest for dangling parents, category mismatches, cycles and stale cached balances
// @Tags			Integrity
// @Accept			json
// @Produce		json
// @Success		200		{object}	IntegrityResponse
// @Failure		400		{object}	IntegrityResponse
// @Failure		500		{object}	IntegrityResponse
// @Param			request	body		IntegrityRequest	true	"Request"
// @Router			/v1/integrity [post]
func RunIntegrity(c *gin.Context) {
	var request IntegrityRequest

	err := httputil.BindData(c, &request)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IntegrityResponse{
			Error: &s,
		})
		return
	}

	if request.OwnerID == uuid.Nil {
		s := errOwnerIDParameter.Error()
		c.JSON(http.StatusBadRequest, IntegrityResponse{
			Error: &s,
		})
		return
	}

	issues, err := models.ValidateIntegrity(models.DB, request.OwnerID, request.Fix)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IntegrityResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, IntegrityResponse{Data: issues})
}
