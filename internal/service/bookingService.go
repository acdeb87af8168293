package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/hotel-booking/config"
	repository "github.com/ds124wfegd/hotel-booking/internal/database/postgres"
	"github.com/ds124wfegd/hotel-booking/internal/entity"
	"github.com/ds124wfegd/hotel-booking/pkg/rabbitmq"
)

// OpsNotifier отправляет оповещения дежурной смене (telegram)
type OpsNotifier interface {
	Notify(text string) error
}

type bookingService struct {
	bookingRepo  repository.BookingRepository
	roomRepo     repository.RoomRepository
	discountRepo repository.DiscountRepository
	paymentRepo  repository.PaymentRepository

	tasks    TaskPublisher
	events   rabbitmq.Publisher
	notifier OpsNotifier

	cfg config.BookingConfig
}

// NewBookingService создает сервис бронирований; events и notifier могут быть nil
func NewBookingService(
	bookingRepo repository.BookingRepository,
	roomRepo repository.RoomRepository,
	discountRepo repository.DiscountRepository,
	paymentRepo repository.PaymentRepository,
	tasks TaskPublisher,
	events rabbitmq.Publisher,
	notifier OpsNotifier,
	cfg config.BookingConfig,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		discountRepo: discountRepo,
		paymentRepo:  paymentRepo,
		tasks:        tasks,
		events:       events,
		notifier:     notifier,
		cfg:          cfg,
	}
}

// CreateBooking проводит полный цикл создания: валидация дат и вместимости,
// подбор скидок, расчет стоимости и атомарная запись всех строк
func (s *bookingService) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*entity.Booking, *entity.Payment, error) {
	now := time.Now()

	if err := s.validateStay(req.CheckIn, req.CheckOut); err != nil {
		return nil, nil, err
	}

	method := entity.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod)))
	if req.PaymentMethod != "" && !method.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", entity.ErrInvalidPaymentMethod, req.PaymentMethod)
	}

	room, err := s.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, nil, err
	}
	if room.Status != entity.RoomStatusAvailable {
		return nil, nil, entity.ErrRoomUnavailable
	}
	if !room.FitsParty(req.Adults, req.Children) {
		return nil, nil, fmt.Errorf("%w: room %s holds up to %d adults and %d children",
			entity.ErrCapacityExceeded, room.Number, room.MaxAdults, room.MaxChildren)
	}

	// Быстрая проверка пересечений до открытия транзакции;
	// окончательная гарантия остается за constraint в базе
	busy, err := s.bookingRepo.HasOverlap(ctx, room.ID, req.CheckIn, req.CheckOut, 0)
	if err != nil {
		return nil, nil, err
	}
	if busy {
		return nil, nil, entity.ErrDatesConflict
	}

	sel := s.resolveDiscounts(ctx, req)

	nights := int(req.CheckOut.Time.Sub(req.CheckIn.Time).Hours() / 24)
	quote := ComputeQuote(nights, room.PricePerNight, room.ID, sel, s.cfg.TaxRate, now)

	booking, payment := s.assemble(req, method, quote)

	special := req.SpecialRequest
	// Лимит считаем в символах, чтобы не разрезать многобайтовую руну
	if runes := []rune(special); s.cfg.SpecialRequestMax > 0 && len(runes) > s.cfg.SpecialRequestMax {
		special = string(runes[:s.cfg.SpecialRequestMax])
	}

	guest := &entity.Guest{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     req.Phone,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	params := &repository.CreateBookingParams{
		Guest:          guest,
		Booking:        booking,
		Payment:        payment,
		SpecialRequest: special,
	}

	err = s.bookingRepo.Create(ctx, params)
	if errors.Is(err, entity.ErrCouponExhausted) {
		// Купон выгорел между проверкой и записью: повторяем один раз без него
		logrus.WithFields(logrus.Fields{
			"coupon": req.CouponCode,
			"room":   room.ID,
		}).Warn("coupon exhausted during booking, retrying without coupon")

		sel.Coupon = nil
		quote = ComputeQuote(nights, room.PricePerNight, room.ID, sel, s.cfg.TaxRate, now)
		booking, payment = s.assemble(req, method, quote)
		params.Booking = booking
		params.Payment = payment
		err = s.bookingRepo.Create(ctx, params)
	}
	if err != nil {
		return nil, nil, err
	}

	s.afterWrite(ctx, booking, guest, room, rabbitmq.EventBookingCreated)

	return booking, payment, nil
}

// assemble формирует строки бронирования и платежа из рассчитанной стоимости
func (s *bookingService) assemble(req *CreateBookingRequest, method entity.PaymentMethod, quote Quote) (*entity.Booking, *entity.Payment) {
	booking := &entity.Booking{
		Reference:      uuid.NewString(),
		RoomID:         req.RoomID,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		Adults:         req.Adults,
		Children:       req.Children,
		TotalAmount:    quote.TotalAmount,
		DiscountAmount: quote.DiscountAmount,
		PackageID:      quote.PackageID,
		PromotionID:    quote.PromotionID,
		CouponID:       quote.CouponID,
		CouponCode:     quote.CouponCode,
		Status:         entity.BookingStatusPending,
	}

	// Платеж создается только для мгновенных способов; шлюзовые методы
	// ждут подтверждения и строки платежа на этом этапе не получают
	var payment *entity.Payment
	if method.IsInstantConfirm() {
		booking.Status = entity.BookingStatusConfirmed
		payment = &entity.Payment{
			TransactionID: uuid.NewString(),
			Method:        method,
			Amount:        quote.TotalAmount,
			Status:        entity.PaymentStatusCompleted,
		}
	}
	return booking, payment
}

// resolveDiscounts загружает скидки по ссылкам из запроса; отсутствующие
// молча пропускаются, клиент получает бронирование без них
func (s *bookingService) resolveDiscounts(ctx context.Context, req *CreateBookingRequest) DiscountSelection {
	var sel DiscountSelection

	if req.PackageID != nil {
		p, err := s.discountRepo.GetPackageByID(ctx, *req.PackageID)
		if err != nil {
			logrus.WithField("package_id", *req.PackageID).WithError(err).Debug("package not applied")
		} else {
			sel.Package = p
		}
	}
	if req.PromotionID != nil {
		p, err := s.discountRepo.GetPromotionByID(ctx, *req.PromotionID)
		if err != nil {
			logrus.WithField("promotion_id", *req.PromotionID).WithError(err).Debug("promotion not applied")
		} else {
			sel.Promotion = p
		}
	}
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		c, err := s.discountRepo.GetCouponByCode(ctx, code)
		if err != nil {
			logrus.WithField("coupon", code).WithError(err).Debug("coupon not applied")
		} else {
			sel.Coupon = c
		}
	}
	return sel
}

// UpdateBooking частично обновляет бронирование; при смене номера или дат
// пересчитывает стоимость и заново проверяет доступность
func (s *bookingService) UpdateBooking(ctx context.Context, id int64, req *UpdateBookingRequest) (*entity.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	today := entity.DateOf(time.Now())

	if req.Status != nil {
		if err := CanTransition(booking, *req.Status, today); err != nil {
			return nil, err
		}
		if *req.Status == entity.BookingStatusCancelled {
			if err := s.bookingRepo.Cancel(ctx, id, "cancelled via update"); err != nil {
				return nil, err
			}
			return s.bookingRepo.GetByID(ctx, id)
		}
	}

	if !booking.IsActive() && (req.RoomID != nil || req.CheckIn != nil || req.CheckOut != nil) {
		return nil, fmt.Errorf("%w: booking is %s", entity.ErrInvalidTransition, booking.Status)
	}

	reprice := false
	if req.RoomID != nil && *req.RoomID != booking.RoomID {
		booking.RoomID = *req.RoomID
		reprice = true
	}
	if req.CheckIn != nil {
		booking.CheckIn = *req.CheckIn
		reprice = true
	}
	if req.CheckOut != nil {
		booking.CheckOut = *req.CheckOut
		reprice = true
	}
	if req.Adults != nil {
		booking.Adults = *req.Adults
	}
	if req.Children != nil {
		booking.Children = *req.Children
	}
	if req.Status != nil {
		booking.Status = *req.Status
	}

	room, err := s.roomRepo.GetByID(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.FitsParty(booking.Adults, booking.Children) {
		return nil, fmt.Errorf("%w: room %s holds up to %d adults and %d children",
			entity.ErrCapacityExceeded, room.Number, room.MaxAdults, room.MaxChildren)
	}

	if reprice {
		if err := s.validateStay(booking.CheckIn, booking.CheckOut); err != nil {
			return nil, err
		}
		if booking.IsActive() {
			busy, err := s.bookingRepo.HasOverlap(ctx, booking.RoomID, booking.CheckIn, booking.CheckOut, booking.ID)
			if err != nil {
				return nil, err
			}
			if busy {
				return nil, entity.ErrDatesConflict
			}
		}

		// Скидочные ссылки остаются теми же, что при создании; их
		// действительность оцениваем на момент исходной брони
		sel := s.storedSelection(ctx, booking)
		quote := ComputeQuote(booking.Nights(), room.PricePerNight, room.ID, sel, s.cfg.TaxRate, booking.CreatedAt)
		booking.TotalAmount = quote.TotalAmount
		booking.DiscountAmount = quote.DiscountAmount
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, booking, rabbitmq.EventBookingUpdated)

	return booking, nil
}

// storedSelection восстанавливает набор скидок по ссылкам, сохраненным в брони
func (s *bookingService) storedSelection(ctx context.Context, b *entity.Booking) DiscountSelection {
	var sel DiscountSelection
	if b.PackageID != nil {
		if p, err := s.discountRepo.GetPackageByID(ctx, *b.PackageID); err == nil {
			sel.Package = p
		}
	}
	if b.PromotionID != nil {
		if p, err := s.discountRepo.GetPromotionByID(ctx, *b.PromotionID); err == nil {
			sel.Promotion = p
		}
	}
	if b.CouponCode != "" {
		if c, err := s.discountRepo.GetCouponByCode(ctx, b.CouponCode); err == nil {
			sel.Coupon = c
		}
	}
	return sel
}

// CancelBooking отменяет бронирование и возвращает платежи
func (s *bookingService) CancelBooking(ctx context.Context, id int64, reason string) (*entity.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == entity.BookingStatusCancelled {
		return nil, entity.ErrBookingCancelled
	}
	if booking.Status == entity.BookingStatusCompleted {
		return nil, fmt.Errorf("%w: booking is completed", entity.ErrInvalidTransition)
	}

	if err := s.bookingRepo.Cancel(ctx, id, reason); err != nil {
		return nil, err
	}

	booking.Status = entity.BookingStatusCancelled
	s.publishEvent(ctx, booking, rabbitmq.EventBookingCancelled)

	if s.notifier != nil {
		go func(ref string) {
			if err := s.notifier.Notify(fmt.Sprintf("Booking %s cancelled: %s", ref, reason)); err != nil {
				logrus.WithError(err).Warn("failed to send cancellation notification")
			}
		}(booking.Reference)
	}

	return booking, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, id int64) error {
	return s.bookingRepo.SoftDelete(ctx, id)
}

func (s *bookingService) GetBooking(ctx context.Context, id int64) (*entity.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *bookingService) ListBookings(ctx context.Context, filter *entity.BookingFilter) ([]*entity.Booking, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: %q", entity.ErrInvalidStatus, filter.Status)
	}
	return s.bookingRepo.List(ctx, filter)
}

func (s *bookingService) GetBookingPayments(ctx context.Context, id int64) ([]*entity.Payment, error) {
	if _, err := s.bookingRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByBookingID(ctx, id)
}

func (s *bookingService) IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut entity.DateOnly, excludeBookingID int64) (bool, error) {
	if err := s.validateStay(checkIn, checkOut); err != nil {
		return false, err
	}
	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		return false, err
	}
	busy, err := s.bookingRepo.HasOverlap(ctx, roomID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return false, err
	}
	return !busy, nil
}

// RunNightAudit завершает прошедшие проживания и снимает зависшие pending брони
func (s *bookingService) RunNightAudit(ctx context.Context) error {
	today := entity.DateOf(time.Now())

	completed, err := s.bookingRepo.CompletePastCheckouts(ctx, today)
	if err != nil {
		return fmt.Errorf("complete past checkouts: %w", err)
	}

	cancelled, err := s.bookingRepo.CancelStalePending(ctx, today)
	if err != nil {
		return fmt.Errorf("cancel stale pending: %w", err)
	}

	if completed > 0 || cancelled > 0 {
		logrus.WithFields(logrus.Fields{
			"completed": completed,
			"cancelled": cancelled,
		}).Info("night audit finished")
	}
	return nil
}

// validateStay проверяет корректность полуоткрытого интервала [checkIn, checkOut)
func (s *bookingService) validateStay(checkIn, checkOut entity.DateOnly) error {
	if !checkOut.After(checkIn) {
		return entity.ErrInvalidDateRange
	}
	nights := int(checkOut.Time.Sub(checkIn.Time).Hours() / 24)
	if s.cfg.MaxStayNights > 0 && nights > s.cfg.MaxStayNights {
		return fmt.Errorf("%w: stay exceeds %d nights", entity.ErrInvalidInput, s.cfg.MaxStayNights)
	}
	return nil
}

// afterWrite запускает пост-обработку созданного бронирования: письмо гостю,
// событие для внешних каналов и напоминание о заезде. Ошибки здесь не влияют
// на результат запроса
func (s *bookingService) afterWrite(ctx context.Context, booking *entity.Booking, guest *entity.Guest, room *entity.Room, event string) {
	if s.tasks != nil {
		email := &Task{
			ID:   uuid.NewString(),
			Type: TaskTypeConfirmationEmail,
			Data: map[string]interface{}{
				"guest_email":  guest.Email,
				"guest_name":   guest.FullName(),
				"reference":    booking.Reference,
				"room_number":  room.Number,
				"check_in":     booking.CheckIn.String(),
				"check_out":    booking.CheckOut.String(),
				"total_amount": fmt.Sprintf("%.2f", booking.TotalAmount),
				"status":       string(booking.Status),
			},
			ExecuteAt:  time.Now(),
			MaxRetries: 3,
		}
		if err := s.tasks.Publish(ctx, email); err != nil {
			logrus.WithError(err).Warn("failed to enqueue confirmation email")
		}

		notify := &Task{
			ID:   uuid.NewString(),
			Type: TaskTypeBookingNotification,
			Data: map[string]interface{}{
				"reference":    booking.Reference,
				"room_number":  room.Number,
				"guest_name":   guest.FullName(),
				"check_in":     booking.CheckIn.String(),
				"check_out":    booking.CheckOut.String(),
				"total_amount": fmt.Sprintf("%.2f", booking.TotalAmount),
				"event":        event,
			},
			ExecuteAt:  time.Now(),
			MaxRetries: 3,
		}
		if err := s.tasks.Publish(ctx, notify); err != nil {
			logrus.WithError(err).Warn("failed to enqueue booking notification")
		}

		// Напоминание за сутки до заезда, если он еще не завтра
		remindAt := booking.CheckIn.Time.Add(-24 * time.Hour)
		if remindAt.After(time.Now()) {
			reminder := &Task{
				ID:   uuid.NewString(),
				Type: TaskTypeCheckinReminder,
				Data: map[string]interface{}{
					"guest_email": guest.Email,
					"guest_name":  guest.FullName(),
					"reference":   booking.Reference,
					"room_number": room.Number,
					"check_in":    booking.CheckIn.String(),
				},
				ExecuteAt:  remindAt,
				MaxRetries: 3,
			}
			if err := s.tasks.Publish(ctx, reminder); err != nil {
				logrus.WithError(err).Warn("failed to enqueue checkin reminder")
			}
		}
	}

	s.publishEvent(ctx, booking, event)
}

func (s *bookingService) publishEvent(ctx context.Context, booking *entity.Booking, event string) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, &rabbitmq.BookingEvent{
		Type:       event,
		BookingID:  booking.ID,
		Reference:  booking.Reference,
		RoomID:     booking.RoomID,
		GuestID:    booking.GuestID,
		CheckIn:    booking.CheckIn.String(),
		CheckOut:   booking.CheckOut.String(),
		Status:     string(booking.Status),
		OccurredAt: time.Now(),
	})
	if err != nil {
		logrus.WithError(err).WithField("event", event).Warn("failed to publish booking event")
	}
}
