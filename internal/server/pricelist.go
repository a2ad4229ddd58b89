package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	pricelistdomain "github.com/hoikulink/tsumugi/internal/pricelist/domain"
	"github.com/hoikulink/tsumugi/pkg/db/pagination"
)

func (s *Server) CreatePriceList(c *gin.Context) {
	var req pricelistdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	created, err := s.pricelistSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListPriceLists returns the current price list and the paged history behind
// it, newest first.
func (s *Server) ListPriceLists(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	current, err := s.pricelistSvc.Current(c.Request.Context())
	if err != nil && err != pricelistdomain.ErrNotFound {
		AbortWithError(c, err)
		return
	}

	history, pageInfo, err := s.pricelistSvc.List(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current":   current,
		"history":   history,
		"page_info": pageInfo,
	})
}
