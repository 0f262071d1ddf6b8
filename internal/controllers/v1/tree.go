package v1

import (
	"net/http"

	"github.com/hearthledger/backend/internal/httputil"
	"github.com/hearthledger/backend/internal/models"
	hl_uuid "github.com/hearthledger/backend/internal/uuid"
	"github.com/gin-gonic/gin"
)

// RegisterTreeRoutes registers the account tree routes with
// the RouterGroup that is passed.
func RegisterTreeRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsTree)
	r.GET("", GetTree)
}

type TreeQueryFilter struct {
	OwnerID  hl_uuid.UUID `form:"owner"`    // Owner whose tree is returned
	Archived bool         `form:"archived"` // Include archived accounts?
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Router			/v1/tree [options]
func OptionsTree(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Account tree
// @Description	Returns the owner's accounts as a forest of category roots with nested children
// @Tags			Accounts
// @Produce		json
// @Success		200	{object}	AccountTreeResponse
// @Failure		400	{object}	AccountTreeResponse
// @Failure		500	{object}	AccountTreeResponse
// @Router			/v1/tree [get]
// @Param			owner		query	string	true	"Owner ID"
// @Param			archived	query	bool	false	"Include archived accounts? Defaults to false."
func GetTree(c *gin.Context) {
	var filter TreeQueryFilter
	_ = c.Bind(&filter)

	if filter.OwnerID == hl_uuid.Nil {
		s := errOwnerIDParameter.Error()
		c.JSON(http.StatusBadRequest, AccountTreeResponse{
			Error: &s,
		})
		return
	}

	nodes, err := models.AccountTree(models.DB, filter.OwnerID.UUID, filter.Archived)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AccountTreeResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, AccountTreeResponse{Data: nodes})
}
