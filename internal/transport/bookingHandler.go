package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
	"github.com/ds124wfegd/hotel-booking/internal/service"
)

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CancelBookingRequest представляет запрос на отмену бронирования
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CreateBooking создает бронирование
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	booking, payment, err := h.bookingService.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Booking created successfully",
		Data: gin.H{
			"booking": booking,
			"payment": payment,
		},
	})
}

// GetBooking возвращает бронирование по ID
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Booking retrieved successfully",
		Data:    booking,
	})
}

// ListBookings возвращает страницу бронирований с фильтрами
func (h *BookingHandler) ListBookings(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := &entity.BookingFilter{
		Status:    entity.BookingStatus(c.Query("status")),
		GuestName: c.Query("guest_name"),
		Limit:     limit,
		Offset:    offset,
	}

	if roomID := c.Query("room_id"); roomID != "" {
		id, err := strconv.ParseInt(roomID, 10, 64)
		if err != nil {
			respondBadRequest(c, "Invalid room_id")
			return
		}
		filter.RoomID = id
	}

	if from, ok := parseDateQuery(c, "from"); ok {
		filter.From = from
	} else {
		return
	}
	if to, ok := parseDateQuery(c, "to"); ok {
		filter.To = to
	} else {
		return
	}

	bookings, total, err := h.bookingService.ListBookings(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Bookings retrieved successfully",
		Data:    bookings,
		Meta: map[string]interface{}{
			"total":    total,
			"limit":    filter.Limit,
			"offset":   filter.Offset,
			"has_more": filter.Offset+len(bookings) < total,
		},
	})
}

// UpdateBooking частично обновляет бронирование
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid booking ID")
		return
	}

	var req service.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	booking, err := h.bookingService.UpdateBooking(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Booking updated successfully",
		Data:    booking,
	})
}

// CancelBooking отменяет бронирование
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid booking ID")
		return
	}

	var req CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}
	if req.Reason == "" {
		req.Reason = "cancelled by guest"
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Booking cancelled successfully",
		Data:    booking,
		Meta: map[string]interface{}{
			"reason": req.Reason,
		},
	})
}

// DeleteBooking помечает бронирование удаленным
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid booking ID")
		return
	}

	if err := h.bookingService.DeleteBooking(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Booking deleted successfully",
	})
}

// GetBookingPayments возвращает платежи бронирования
func (h *BookingHandler) GetBookingPayments(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid booking ID")
		return
	}

	payments, err := h.bookingService.GetBookingPayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Payments retrieved successfully",
		Data:    payments,
	})
}

// parseDateQuery читает необязательный параметр-дату; при ошибке формата
// пишет 400 и возвращает ok=false
func parseDateQuery(c *gin.Context, name string) (*entity.DateOnly, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	var d entity.DateOnly
	if err := d.Scan(raw); err != nil {
		respondBadRequest(c, "Invalid "+name+" date, expected YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}
