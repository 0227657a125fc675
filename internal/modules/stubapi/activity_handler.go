package stubapi

import (
	"net/http"

	"be4you/internal/middleware"
	"be4you/internal/model/activitymodel"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/response"

	"github.com/labstack/echo/v4"
)

// ListActivities GET /Activities
func (s *Server) ListActivities(c echo.Context) error {
	current, _ := middleware.GetCurrentUser(c)
	return response.EchoOK(c, http.StatusOK, s.data.listActivities(current.UserID))
}

// GetActivity GET /Activities/:id
func (s *Server) GetActivity(c echo.Context) error {
	current, _ := middleware.GetCurrentUser(c)
	id := c.Param("id")

	detail, ok := s.data.getActivity(current.UserID, id)
	if !ok {
		return response.EchoNotFound(c, "activity", id)
	}
	return response.EchoOK(c, http.StatusOK, detail)
}

// CreateActivity POST /Activities/CreateWithItems
func (s *Server) CreateActivity(c echo.Context) error {
	current, _ := middleware.GetCurrentUser(c)
	var payload activitymodel.ActivityPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}

	detail := s.data.createActivity(current.UserID, payload)
	s.logger.InfoContext(c.Request().Context(), "activity created",
		log.String("activity_id", detail.ID),
		log.Int("items", len(detail.ActivityItems)))
	return response.EchoOK(c, http.StatusCreated, detail)
}

// UpdateActivity PUT /Activities/:id
func (s *Server) UpdateActivity(c echo.Context) error {
	current, _ := middleware.GetCurrentUser(c)
	id := c.Param("id")
	var payload activitymodel.ActivityPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}

	detail, ok := s.data.updateActivity(current.UserID, id, payload)
	if !ok {
		return response.EchoNotFound(c, "activity", id)
	}
	return response.EchoOK(c, http.StatusOK, detail)
}

// DeleteActivity DELETE /Activities/:id
func (s *Server) DeleteActivity(c echo.Context) error {
	current, _ := middleware.GetCurrentUser(c)
	id := c.Param("id")

	if !s.data.deleteActivity(current.UserID, id) {
		return response.EchoNotFound(c, "activity", id)
	}
	return c.NoContent(http.StatusNoContent)
}
