package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds124wfegd/hotel-booking/config"
	repository "github.com/ds124wfegd/hotel-booking/internal/database/postgres"
	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

// fakeBookingRepo хранит бронирования в памяти
type fakeBookingRepo struct {
	bookings    map[int64]*entity.Booking
	nextID      int64
	overlap     bool
	createErrs  []error // ошибки для последовательных вызовов Create
	createCalls int
	lastSpecial string
	cancelled   map[int64]string
	deleted     map[int64]bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:  make(map[int64]*entity.Booking),
		nextID:    1,
		cancelled: make(map[int64]string),
		deleted:   make(map[int64]bool),
	}
}

func (r *fakeBookingRepo) Create(ctx context.Context, params *repository.CreateBookingParams) error {
	call := r.createCalls
	r.createCalls++
	if call < len(r.createErrs) && r.createErrs[call] != nil {
		return r.createErrs[call]
	}

	params.Guest.ID = 100
	params.Booking.ID = r.nextID
	params.Booking.GuestID = params.Guest.ID
	params.Booking.CreatedAt = time.Now()
	if params.Payment != nil {
		params.Payment.ID = r.nextID
		params.Payment.BookingID = params.Booking.ID
	}
	r.bookings[r.nextID] = params.Booking
	r.lastSpecial = params.SpecialRequest
	r.nextID++
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*entity.Booking, error) {
	b, ok := r.bookings[id]
	if !ok || r.deleted[id] {
		return nil, entity.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, booking *entity.Booking) error {
	if _, ok := r.bookings[booking.ID]; !ok {
		return entity.ErrBookingNotFound
	}
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) Cancel(ctx context.Context, id int64, reason string) error {
	b, ok := r.bookings[id]
	if !ok {
		return entity.ErrBookingNotFound
	}
	b.Status = entity.BookingStatusCancelled
	r.cancelled[id] = reason
	return nil
}

func (r *fakeBookingRepo) SoftDelete(ctx context.Context, id int64) error {
	if _, ok := r.bookings[id]; !ok {
		return entity.ErrBookingNotFound
	}
	r.deleted[id] = true
	return nil
}

func (r *fakeBookingRepo) List(ctx context.Context, filter *entity.BookingFilter) ([]*entity.Booking, int, error) {
	var out []*entity.Booking
	for _, b := range r.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (r *fakeBookingRepo) HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut entity.DateOnly, excludeBookingID int64) (bool, error) {
	if r.overlap {
		return true, nil
	}
	for id, b := range r.bookings {
		if id == excludeBookingID || r.deleted[id] || b.RoomID != roomID {
			continue
		}
		if b.BlocksRange(checkIn, checkOut) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) CompletePastCheckouts(ctx context.Context, today entity.DateOnly) (int64, error) {
	return 0, nil
}

func (r *fakeBookingRepo) CancelStalePending(ctx context.Context, before entity.DateOnly) (int64, error) {
	return 0, nil
}

func (r *fakeBookingRepo) AddLog(ctx context.Context, bookingID int64, kind, note string) error {
	return nil
}

type fakeRoomRepo struct {
	rooms map[int64]*entity.Room
}

func (r *fakeRoomRepo) Create(ctx context.Context, room *entity.Room) error { return nil }

func (r *fakeRoomRepo) GetByID(ctx context.Context, id int64) (*entity.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, entity.ErrRoomNotFound
	}
	return room, nil
}

func (r *fakeRoomRepo) GetAll(ctx context.Context) ([]*entity.Room, error) { return nil, nil }
func (r *fakeRoomRepo) Update(ctx context.Context, room *entity.Room) error {
	return nil
}

type fakeDiscountRepo struct {
	coupons map[string]*entity.Coupon
}

func (r *fakeDiscountRepo) GetPackageByID(ctx context.Context, id int64) (*entity.Package, error) {
	return nil, entity.ErrPackageNotFound
}

func (r *fakeDiscountRepo) GetPromotionByID(ctx context.Context, id int64) (*entity.Promotion, error) {
	return nil, entity.ErrPromotionNotFound
}

func (r *fakeDiscountRepo) GetCouponByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	c, ok := r.coupons[code]
	if !ok {
		return nil, entity.ErrCouponNotFound
	}
	return c, nil
}

func (r *fakeDiscountRepo) GetActivePackages(ctx context.Context) ([]*entity.Package, error) {
	return nil, nil
}

func (r *fakeDiscountRepo) GetActivePromotions(ctx context.Context) ([]*entity.Promotion, error) {
	return nil, nil
}

type fakePaymentRepo struct{}

func (r *fakePaymentRepo) GetByBookingID(ctx context.Context, bookingID int64) ([]*entity.Payment, error) {
	return nil, nil
}

func newTestService(bookingRepo *fakeBookingRepo, coupons map[string]*entity.Coupon) BookingService {
	rooms := map[int64]*entity.Room{
		1: {
			ID:            1,
			Number:        "101",
			Type:          "standard",
			PricePerNight: 1000,
			MaxAdults:     2,
			MaxChildren:   2,
			AllowChildren: true,
			Status:        entity.RoomStatusAvailable,
		},
		2: {
			ID:            2,
			Number:        "201",
			Type:          "single",
			PricePerNight: 600,
			MaxAdults:     1,
			MaxChildren:   0,
			AllowChildren: false,
			Status:        entity.RoomStatusAvailable,
		},
	}
	if coupons == nil {
		coupons = make(map[string]*entity.Coupon)
	}
	return NewBookingService(
		bookingRepo,
		&fakeRoomRepo{rooms: rooms},
		&fakeDiscountRepo{coupons: coupons},
		&fakePaymentRepo{},
		nil, nil, nil,
		config.BookingConfig{TaxRate: 0.13, SpecialRequestMax: 1000},
	)
}

func validCreateRequest() *CreateBookingRequest {
	return &CreateBookingRequest{
		RoomID:    1,
		CheckIn:   entity.DateOf(time.Now().AddDate(0, 0, 7)),
		CheckOut:  entity.DateOf(time.Now().AddDate(0, 0, 9)),
		Adults:    2,
		Children:  0,
		FirstName: "Anna",
		LastName:  "Petrova",
		Email:     "anna@example.com",
		Phone:     "+77001234567",
	}
}

// TestCreateBooking тестирует успешное создание без оплаты
func TestCreateBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	booking, payment, err := svc.CreateBooking(context.Background(), validCreateRequest())

	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Nil(t, payment)
	assert.Equal(t, entity.BookingStatusPending, booking.Status)
	assert.NotEmpty(t, booking.Reference)
	// 2 ночи по 1000 плюс 13% налога
	assert.Equal(t, 2260.0, booking.TotalAmount)
	assert.Equal(t, 0.0, booking.DiscountAmount)
}

// TestCreateBookingInstantConfirm тестирует мгновенное подтверждение при оплате наличными
func TestCreateBookingInstantConfirm(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	req := validCreateRequest()
	req.PaymentMethod = "cash"

	booking, payment, err := svc.CreateBooking(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, entity.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, booking.TotalAmount, payment.Amount)
	assert.NotEmpty(t, payment.TransactionID)
}

// TestCreateBookingGatewayMethodStaysPending тестирует оплату через внешний шлюз
func TestCreateBookingGatewayMethodStaysPending(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	req := validCreateRequest()
	req.PaymentMethod = "khalti"

	booking, payment, err := svc.CreateBooking(context.Background(), req)

	require.NoError(t, err)
	// Шлюзовой метод не создает платеж до подтверждения оплаты
	assert.Nil(t, payment)
	assert.Equal(t, entity.BookingStatusPending, booking.Status)
}

// TestCreateBookingSpecialRequestTruncated тестирует обрезку пожелания
// по символам: многобайтовая руна не разрезается посередине
func TestCreateBookingSpecialRequestTruncated(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	req := validCreateRequest()
	req.SpecialRequest = strings.Repeat("ё", 1005)

	_, _, err := svc.CreateBooking(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1000, utf8.RuneCountInString(repo.lastSpecial))
	assert.True(t, utf8.ValidString(repo.lastSpecial))
}

// TestCreateBookingValidation тестирует отказы валидации
func TestCreateBookingValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateBookingRequest)
		wantErr error
	}{
		{
			name: "check-out equals check-in",
			mutate: func(r *CreateBookingRequest) {
				r.CheckOut = r.CheckIn
			},
			wantErr: entity.ErrInvalidDateRange,
		},
		{
			name: "check-out before check-in",
			mutate: func(r *CreateBookingRequest) {
				r.CheckIn, r.CheckOut = r.CheckOut, r.CheckIn
			},
			wantErr: entity.ErrInvalidDateRange,
		},
		{
			name: "too many adults",
			mutate: func(r *CreateBookingRequest) {
				r.Adults = 5
			},
			wantErr: entity.ErrCapacityExceeded,
		},
		{
			name: "children in a room that does not allow them",
			mutate: func(r *CreateBookingRequest) {
				r.RoomID = 2
				r.Adults = 1
				r.Children = 1
			},
			wantErr: entity.ErrCapacityExceeded,
		},
		{
			name: "unknown room",
			mutate: func(r *CreateBookingRequest) {
				r.RoomID = 99
			},
			wantErr: entity.ErrRoomNotFound,
		},
		{
			name: "unknown payment method",
			mutate: func(r *CreateBookingRequest) {
				r.PaymentMethod = "bitcoin"
			},
			wantErr: entity.ErrInvalidPaymentMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeBookingRepo()
			svc := newTestService(repo, nil)

			req := validCreateRequest()
			tt.mutate(req)

			_, _, err := svc.CreateBooking(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, repo.createCalls)
		})
	}
}

// TestCreateBookingDatesConflict тестирует отказ при пересечении дат
func TestCreateBookingDatesConflict(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.overlap = true
	svc := newTestService(repo, nil)

	_, _, err := svc.CreateBooking(context.Background(), validCreateRequest())

	assert.ErrorIs(t, err, entity.ErrDatesConflict)
}

// TestCreateBookingBackToBackDates тестирует, что день выезда свободен
// для нового заезда, а наложение хотя бы на одну ночь отклоняется
func TestCreateBookingBackToBackDates(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	_, _, err := svc.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	// Заезд в день выезда предыдущей брони
	second := validCreateRequest()
	second.CheckIn = entity.DateOf(time.Now().AddDate(0, 0, 9))
	second.CheckOut = entity.DateOf(time.Now().AddDate(0, 0, 11))
	_, _, err = svc.CreateBooking(context.Background(), second)
	require.NoError(t, err)

	// Интервал поверх стыка двух существующих броней
	third := validCreateRequest()
	third.CheckIn = entity.DateOf(time.Now().AddDate(0, 0, 8))
	third.CheckOut = entity.DateOf(time.Now().AddDate(0, 0, 10))
	_, _, err = svc.CreateBooking(context.Background(), third)
	assert.ErrorIs(t, err, entity.ErrDatesConflict)
}

// TestCreateBookingCouponExhaustedRetry тестирует повтор без купона,
// когда лимит купона исчерпан между проверкой и записью
func TestCreateBookingCouponExhaustedRetry(t *testing.T) {
	coupon := &entity.Coupon{
		ID:            5,
		Code:          "SAVE10",
		DiscountType:  entity.DiscountTypePercent,
		DiscountValue: 10,
		ValidFrom:     time.Now().AddDate(0, -1, 0),
		ValidTo:       time.Now().AddDate(0, 1, 0),
		Active:        true,
	}

	repo := newFakeBookingRepo()
	repo.createErrs = []error{entity.ErrCouponExhausted}
	svc := newTestService(repo, map[string]*entity.Coupon{"SAVE10": coupon})

	req := validCreateRequest()
	req.CouponCode = "SAVE10"

	booking, _, err := svc.CreateBooking(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 2, repo.createCalls)
	// Итог пересчитан без купона
	assert.Equal(t, 2260.0, booking.TotalAmount)
	assert.Equal(t, 0.0, booking.DiscountAmount)
	assert.Nil(t, booking.CouponID)
	assert.Empty(t, booking.CouponCode)
}

// TestCreateBookingUnknownCouponIgnored тестирует молчаливый пропуск несуществующего купона
func TestCreateBookingUnknownCouponIgnored(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	req := validCreateRequest()
	req.CouponCode = "NOSUCH"

	booking, _, err := svc.CreateBooking(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 2260.0, booking.TotalAmount)
	assert.Nil(t, booking.CouponID)
}

// TestCancelBooking тестирует отмену и ее ограничения
func TestCancelBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	booking, _, err := svc.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	cancelled, err := svc.CancelBooking(context.Background(), booking.ID, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, "plans changed", repo.cancelled[booking.ID])

	// Повторная отмена
	_, err = svc.CancelBooking(context.Background(), booking.ID, "again")
	assert.ErrorIs(t, err, entity.ErrBookingCancelled)
}

// TestCancelCompletedBooking тестирует запрет отмены завершенного проживания
func TestCancelCompletedBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	booking, _, err := svc.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	repo.bookings[booking.ID].Status = entity.BookingStatusCompleted

	_, err = svc.CancelBooking(context.Background(), booking.ID, "late")
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}

// TestUpdateBookingReprice тестирует пересчет стоимости при смене дат
func TestUpdateBookingReprice(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	booking, _, err := svc.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	newCheckOut := entity.DateOf(time.Now().AddDate(0, 0, 10)) // 3 ночи вместо 2

	updated, err := svc.UpdateBooking(context.Background(), booking.ID, &UpdateBookingRequest{
		CheckOut: &newCheckOut,
	})

	require.NoError(t, err)
	assert.Equal(t, 3390.0, updated.TotalAmount) // 3000 + 13%
}

// TestUpdateBookingConflict тестирует отказ обновления при занятых датах
func TestUpdateBookingConflict(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	booking, _, err := svc.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	repo.overlap = true
	newCheckOut := entity.DateOf(time.Now().AddDate(0, 0, 12))

	_, err = svc.UpdateBooking(context.Background(), booking.ID, &UpdateBookingRequest{
		CheckOut: &newCheckOut,
	})
	assert.ErrorIs(t, err, entity.ErrDatesConflict)
}

// TestUpdateCancelledBookingDates тестирует запрет переноса отмененной брони
func TestUpdateCancelledBookingDates(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	booking, _, err := svc.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)
	_, err = svc.CancelBooking(context.Background(), booking.ID, "gone")
	require.NoError(t, err)

	newRoom := int64(2)
	_, err = svc.UpdateBooking(context.Background(), booking.ID, &UpdateBookingRequest{
		RoomID: &newRoom,
	})
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}

// TestUpdateBookingCancelViaStatus тестирует отмену через PUT со сменой статуса
func TestUpdateBookingCancelViaStatus(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	booking, _, err := svc.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	cancelled := entity.BookingStatusCancelled
	updated, err := svc.UpdateBooking(context.Background(), booking.ID, &UpdateBookingRequest{
		Status: &cancelled,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, updated.Status)
	assert.NotEmpty(t, repo.cancelled[booking.ID])

	// Повтор отмены через PUT отклоняется так же, как повторный PATCH
	_, err = svc.UpdateBooking(context.Background(), booking.ID, &UpdateBookingRequest{
		Status: &cancelled,
	})
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}

// TestIsRoomAvailable тестирует запрос доступности
func TestIsRoomAvailable(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	checkIn := entity.DateOf(time.Now().AddDate(0, 0, 1))
	checkOut := entity.DateOf(time.Now().AddDate(0, 0, 3))

	available, err := svc.IsRoomAvailable(context.Background(), 1, checkIn, checkOut, 0)
	require.NoError(t, err)
	assert.True(t, available)

	repo.overlap = true
	available, err = svc.IsRoomAvailable(context.Background(), 1, checkIn, checkOut, 0)
	require.NoError(t, err)
	assert.False(t, available)

	_, err = svc.IsRoomAvailable(context.Background(), 1, checkOut, checkIn, 0)
	assert.ErrorIs(t, err, entity.ErrInvalidDateRange)
}

// TestDeleteBooking тестирует мягкое удаление
func TestDeleteBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newTestService(repo, nil)

	booking, _, err := svc.CreateBooking(context.Background(), validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBooking(context.Background(), booking.ID))

	_, err = svc.GetBooking(context.Background(), booking.ID)
	assert.ErrorIs(t, err, entity.ErrBookingNotFound)

	err = svc.DeleteBooking(context.Background(), 999)
	assert.ErrorIs(t, err, entity.ErrBookingNotFound)
}
