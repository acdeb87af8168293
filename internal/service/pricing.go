package service

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

// DiscountSelection содержит скидки, отобранные для расчёта стоимости.
// Любое поле может быть nil, тогда соответствующий шаг пропускается.
type DiscountSelection struct {
	Package   *entity.Package
	Promotion *entity.Promotion
	Coupon    *entity.Coupon
}

// Quote представляет результат расчёта стоимости бронирования
type Quote struct {
	BaseAmount       float64 `json:"base_amount"`
	DiscountAmount   float64 `json:"discount_amount"`
	DiscountedAmount float64 `json:"discounted_amount"`
	TaxAmount        float64 `json:"tax_amount"`
	TotalAmount      float64 `json:"total_amount"`

	// Ссылки на реально применённые скидки
	PackageID   *int64 `json:"package_id,omitempty"`
	PromotionID *int64 `json:"promotion_id,omitempty"`
	CouponID    *int64 `json:"coupon_id,omitempty"`
	CouponCode  string `json:"coupon_code,omitempty"`
}

// ComputeQuote рассчитывает стоимость бронирования: базовая цена за ночи,
// затем скидки в фиксированном порядке пакет -> акция -> купон, затем налог.
// Недействительные на момент now скидки молча пропускаются.
//
// Пакет подменяет базовую сумму и не входит в discount; акция и купон
// считаются каждый от суммы после пакета и накапливаются в discount,
// итог срезается до нуля один раз в конце.
func ComputeQuote(nights int, pricePerNight float64, roomID int64, sel DiscountSelection, taxRate float64, now time.Time) Quote {
	base := float64(nights) * pricePerNight

	q := Quote{BaseAmount: round2(base)}

	if p := sel.Package; p != nil && p.ValidAt(now) {
		switch p.Type {
		case entity.DiscountTypeFixed:
			base = p.Value
		case entity.DiscountTypePercent:
			base = base * (1 - p.Value/100)
		}
		if base < 0 {
			base = 0
		}
		q.PackageID = &p.ID
	}

	var discount float64

	if pr := sel.Promotion; pr != nil && pr.ValidAt(now) {
		ids, ok := pr.RoomIDs()
		if !ok {
			// Битый список трактуем как отсутствие ограничений
			logrus.WithField("promotion_id", pr.ID).Warn("promotion has malformed applicable_rooms, treating as unrestricted")
			ids = nil
		}
		if roomMatches(ids, roomID) {
			switch pr.DiscountType {
			case entity.DiscountTypeFixed:
				discount += pr.DiscountValue
			case entity.DiscountTypePercent:
				discount += base * pr.DiscountValue / 100
			}
			q.PromotionID = &pr.ID
		}
	}

	if c := sel.Coupon; c != nil && c.ValidAt(now) && !c.Exhausted() {
		switch c.DiscountType {
		case entity.DiscountTypeFixed:
			discount += c.DiscountValue
		case entity.DiscountTypePercent:
			discount += base * c.DiscountValue / 100
		}
		q.CouponID = &c.ID
		q.CouponCode = c.Code
	}

	discounted := base - discount
	if discounted < 0 {
		discounted = 0
	}

	q.DiscountAmount = round2(discount)
	q.DiscountedAmount = round2(discounted)
	q.TaxAmount = round2(q.DiscountedAmount * taxRate)
	q.TotalAmount = round2(q.DiscountedAmount + q.TaxAmount)
	return q
}

func roomMatches(ids []int64, roomID int64) bool {
	if ids == nil {
		return true
	}
	for _, id := range ids {
		if id == roomID {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
