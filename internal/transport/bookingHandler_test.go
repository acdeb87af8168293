package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
	"github.com/ds124wfegd/hotel-booking/internal/service"
)

// stubBookingService возвращает заранее заданные результаты
type stubBookingService struct {
	booking *entity.Booking
	payment *entity.Payment
	err     error
}

func (s *stubBookingService) CreateBooking(ctx context.Context, req *service.CreateBookingRequest) (*entity.Booking, *entity.Payment, error) {
	return s.booking, s.payment, s.err
}

func (s *stubBookingService) UpdateBooking(ctx context.Context, id int64, req *service.UpdateBookingRequest) (*entity.Booking, error) {
	return s.booking, s.err
}

func (s *stubBookingService) CancelBooking(ctx context.Context, id int64, reason string) (*entity.Booking, error) {
	return s.booking, s.err
}

func (s *stubBookingService) DeleteBooking(ctx context.Context, id int64) error {
	return s.err
}

func (s *stubBookingService) GetBooking(ctx context.Context, id int64) (*entity.Booking, error) {
	return s.booking, s.err
}

func (s *stubBookingService) ListBookings(ctx context.Context, filter *entity.BookingFilter) ([]*entity.Booking, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return []*entity.Booking{s.booking}, 1, nil
}

func (s *stubBookingService) GetBookingPayments(ctx context.Context, id int64) ([]*entity.Payment, error) {
	return nil, s.err
}

func (s *stubBookingService) IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut entity.DateOnly, excludeBookingID int64) (bool, error) {
	return s.err == nil, s.err
}

func (s *stubBookingService) RunNightAudit(ctx context.Context) error {
	return s.err
}

func testRouter(svc service.BookingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewBookingHandler(svc)
	api := router.Group("/api")
	bookings := api.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.PATCH("/:id/cancel", h.CancelBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
	}
	return router
}

func sampleBooking() *entity.Booking {
	return &entity.Booking{
		ID:          1,
		Reference:   "ref-1",
		RoomID:      1,
		CheckIn:     entity.DateOf(time.Now().AddDate(0, 0, 1)),
		CheckOut:    entity.DateOf(time.Now().AddDate(0, 0, 3)),
		Adults:      2,
		TotalAmount: 2260,
		Status:      entity.BookingStatusPending,
	}
}

// TestCreateBookingEndpoint тестирует успешное создание через HTTP
func TestCreateBookingEndpoint(t *testing.T) {
	router := testRouter(&stubBookingService{booking: sampleBooking()})

	body := map[string]interface{}{
		"room_id":    1,
		"check_in":   "2026-09-10",
		"check_out":  "2026-09-12",
		"adults":     2,
		"first_name": "Anna",
		"last_name":  "Petrova",
		"email":      "anna@example.com",
		"phone":      "+77001234567",
	}
	data, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

// TestCreateBookingEndpointBadBody тестирует отказ на невалидном теле запроса
func TestCreateBookingEndpointBadBody(t *testing.T) {
	router := testRouter(&stubBookingService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader([]byte(`{"room_id": "abc"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

// TestErrorStatusMapping тестирует отображение ошибок сервиса в HTTP статусы
func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid date range", err: entity.ErrInvalidDateRange, wantStatus: http.StatusBadRequest},
		{name: "capacity exceeded", err: entity.ErrCapacityExceeded, wantStatus: http.StatusBadRequest},
		{name: "already cancelled", err: entity.ErrBookingCancelled, wantStatus: http.StatusBadRequest},
		{name: "booking not found", err: entity.ErrBookingNotFound, wantStatus: http.StatusNotFound},
		{name: "room not found", err: entity.ErrRoomNotFound, wantStatus: http.StatusNotFound},
		{name: "dates conflict", err: entity.ErrDatesConflict, wantStatus: http.StatusConflict},
		{name: "illegal transition", err: entity.ErrInvalidTransition, wantStatus: http.StatusBadRequest},
		{name: "unexpected failure", err: assert.AnError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testRouter(&stubBookingService{err: tt.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/bookings/1", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

// TestCancelBookingEndpoint тестирует отмену через PATCH
func TestCancelBookingEndpoint(t *testing.T) {
	booking := sampleBooking()
	booking.Status = entity.BookingStatusCancelled
	router := testRouter(&stubBookingService{booking: booking})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/bookings/1/cancel", bytes.NewReader([]byte(`{"reason":"plans changed"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// TestListBookingsEndpoint тестирует пагинацию в выдаче списка
func TestListBookingsEndpoint(t *testing.T) {
	router := testRouter(&stubBookingService{booking: sampleBooking()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings?limit=10&offset=0&status=pending", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	meta, ok := resp.Meta.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), meta["total"])
	assert.Equal(t, false, meta["has_more"])
}

// TestInvalidBookingID тестирует отказ на нечисловом id
func TestInvalidBookingID(t *testing.T) {
	router := testRouter(&stubBookingService{booking: sampleBooking()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
