package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

// SuccessResponse представляет успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// respondError отображает ошибку сервисного слоя в HTTP статус:
// ошибки валидации в 400, отсутствующие объекты в 404, конфликты в 409
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, entity.ErrInvalidDateRange),
		errors.Is(err, entity.ErrCapacityExceeded),
		errors.Is(err, entity.ErrInvalidStatus),
		errors.Is(err, entity.ErrInvalidPaymentMethod),
		errors.Is(err, entity.ErrInvalidEmail),
		errors.Is(err, entity.ErrBookingCancelled),
		errors.Is(err, entity.ErrInvalidTransition),
		errors.Is(err, entity.ErrInvalidInput):
		status = http.StatusBadRequest

	case errors.Is(err, entity.ErrBookingNotFound),
		errors.Is(err, entity.ErrRoomNotFound),
		errors.Is(err, entity.ErrGuestNotFound),
		errors.Is(err, entity.ErrPackageNotFound),
		errors.Is(err, entity.ErrPromotionNotFound),
		errors.Is(err, entity.ErrCouponNotFound),
		errors.Is(err, entity.ErrPaymentNotFound):
		status = http.StatusNotFound

	case errors.Is(err, entity.ErrDatesConflict),
		errors.Is(err, entity.ErrRoomNumberTaken),
		errors.Is(err, entity.ErrRoomUnavailable),
		errors.Is(err, entity.ErrCouponExhausted):
		status = http.StatusConflict
	}

	c.JSON(status, ErrorResponse{
		Success: false,
		Error:   err.Error(),
	})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   msg,
	})
}
