package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) PreviewInvoice(c *gin.Context) {
	actor, _ := actorFrom(c)

	preview, err := s.billingSvc.Preview(
		c.Request.Context(),
		actor,
		c.Query("childId"),
		c.Query("month"),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// BillingOverview lists children with usage in the month alongside their
// invoice status, for the admin billing page.
func (s *Server) BillingOverview(c *gin.Context) {
	rows, err := s.invoiceSvc.Overview(
		c.Request.Context(),
		c.Query("month"),
		c.Query("name"),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"children": rows})
}
