package http

import (
	"net/http"

	"chatrelay/internal/core/domain"
	"chatrelay/internal/core/services"
	apperrors "chatrelay/pkg/errors"

	"github.com/gin-gonic/gin"
)

// RoomHandler exposes the coordinator's read paths over HTTP. All mutation
// flows through the WebSocket events; this API only observes.
type RoomHandler struct {
	roomService *services.RoomService
}

func NewRoomHandler(roomService *services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

func (h *RoomHandler) SetupRoutes(router *gin.Engine, middlewares ...gin.HandlerFunc) {
	api := router.Group("/api/v1", middlewares...)
	{
		api.GET("/rooms", h.ListRooms)
		api.GET("/rooms/:id/users", h.GetRoomUsers)
	}
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms := h.roomService.Summaries(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"rooms": rooms,
	})
}

func (h *RoomHandler) GetRoomUsers(c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))

	users, err := h.roomService.Presence(c.Request.Context(), roomID)
	if err != nil {
		if err == domain.ErrRoomNotFound {
			c.Error(apperrors.NewNotFoundError("room"))
			return
		}
		c.Error(apperrors.NewInternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"roomId": roomID,
		"users":  users,
	})
}
