package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/hotel-booking/internal/service"
)

type RoomHandler struct {
	roomService    service.RoomService
	bookingService service.BookingService
}

func NewRoomHandler(roomService service.RoomService, bookingService service.BookingService) *RoomHandler {
	return &RoomHandler{
		roomService:    roomService,
		bookingService: bookingService,
	}
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req service.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Room created successfully",
		Data:    room,
	})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid room ID")
		return
	}

	room, err := h.roomService.GetRoom(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Room retrieved successfully",
		Data:    room,
	})
}

func (h *RoomHandler) GetAllRooms(c *gin.Context) {
	rooms, err := h.roomService.GetAllRooms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Rooms retrieved successfully",
		Data:    rooms,
		Meta: map[string]interface{}{
			"total": len(rooms),
		},
	})
}

func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid room ID")
		return
	}

	var req service.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	room, err := h.roomService.UpdateRoom(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Room updated successfully",
		Data:    room,
	})
}

// CheckAvailability проверяет свободен ли номер на интервал [check_in, check_out)
func (h *RoomHandler) CheckAvailability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid room ID")
		return
	}

	checkIn, ok := parseDateQuery(c, "check_in")
	if !ok {
		return
	}
	checkOut, ok := parseDateQuery(c, "check_out")
	if !ok {
		return
	}
	if checkIn == nil || checkOut == nil {
		respondBadRequest(c, "check_in and check_out query parameters are required")
		return
	}

	available, err := h.bookingService.IsRoomAvailable(c.Request.Context(), id, *checkIn, *checkOut, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Availability checked successfully",
		Data: gin.H{
			"room_id":   id,
			"check_in":  checkIn,
			"check_out": checkOut,
			"available": available,
		},
	})
}
