package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/hotel-booking/internal/service"
)

type GuestHandler struct {
	guestService service.GuestService
}

func NewGuestHandler(guestService service.GuestService) *GuestHandler {
	return &GuestHandler{guestService: guestService}
}

func (h *GuestHandler) GetGuest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid guest ID")
		return
	}

	guest, err := h.guestService.GetGuest(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Guest retrieved successfully",
		Data:    guest,
	})
}

// GetAllGuests возвращает гостей, опционально фильтруя по имени
func (h *GuestHandler) GetAllGuests(c *gin.Context) {
	name := c.Query("name")

	guests, err := h.guestService.SearchGuests(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Guests retrieved successfully",
		Data:    guests,
		Meta: map[string]interface{}{
			"total": len(guests),
		},
	})
}
