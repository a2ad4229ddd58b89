package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reservationdomain "github.com/hoikulink/tsumugi/internal/reservation/domain"
)

// ReplaceMonth is the bulk path: the whole child-month is swapped in one
// transaction.
func (s *Server) ReplaceMonth(c *gin.Context) {
	actor, _ := actorFrom(c)

	var req reservationdomain.ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.reservationSvc.Replace(c.Request.Context(), actor, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) CreateReservation(c *gin.Context) {
	actor, _ := actorFrom(c)

	var req reservationdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	created, err := s.reservationSvc.Create(c.Request.Context(), actor, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Server) UpdateReservation(c *gin.Context) {
	actor, _ := actorFrom(c)

	var req reservationdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	updated, err := s.reservationSvc.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteReservation(c *gin.Context) {
	actor, _ := actorFrom(c)

	if err := s.reservationSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListReservations(c *gin.Context) {
	actor, _ := actorFrom(c)

	result, err := s.reservationSvc.ListMonth(
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
