package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	childdomain "github.com/hoikulink/tsumugi/internal/child/domain"
	invoicedomain "github.com/hoikulink/tsumugi/internal/invoice/domain"
)

func (s *Server) FinalizeInvoice(c *gin.Context) {
	var req invoicedomain.FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	finalized, err := s.invoiceSvc.Finalize(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, finalized)
}

func (s *Server) GetInvoiceAdmin(c *gin.Context) {
	actor, _ := actorFrom(c)
	s.getInvoice(c, actor)
}

func (s *Server) GetInvoice(c *gin.Context) {
	actor, _ := actorFrom(c)
	s.getInvoice(c, actor)
}

func (s *Server) ListInvoices(c *gin.Context) {
	actor, _ := actorFrom(c)

	result, err := s.invoiceSvc.ListForGuardian(c.Request.Context(), actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"children": result})
}

func (s *Server) getInvoice(c *gin.Context, actor childdomain.Actor) {
	result, err := s.invoiceSvc.Get(
		c.Request.Context(),
		actor,
		c.Query("childId"),
		c.Query("month"),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
