package entity

import (
	"database/sql"
	"encoding/json"
	"time"
)

type DiscountType string

const (
	DiscountTypeFixed   DiscountType = "fixed"
	DiscountTypePercent DiscountType = "percent"
)

// Package это тарифный пакет: fixed полностью заменяет базовую сумму,
// percent уменьшает ее на заданный процент
type Package struct {
	ID        int64        `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Type      DiscountType `json:"type" db:"type"`
	Value     float64      `json:"value" db:"value"`
	ValidFrom time.Time    `json:"valid_from" db:"valid_from"`
	ValidTo   time.Time    `json:"valid_to" db:"valid_to"`
	Active    bool         `json:"active" db:"active"`
}

func (p *Package) ValidAt(t time.Time) bool {
	return p.Active && !t.Before(p.ValidFrom) && !t.After(p.ValidTo)
}

// Promotion это скидка уровня отеля; ApplicableRooms содержит JSON массив
// id номеров, NULL означает все номера
type Promotion struct {
	ID              int64          `json:"id" db:"id"`
	Name            string         `json:"name" db:"name"`
	DiscountType    DiscountType   `json:"discount_type" db:"discount_type"`
	DiscountValue   float64        `json:"discount_value" db:"discount_value"`
	ValidFrom       time.Time      `json:"valid_from" db:"valid_from"`
	ValidTo         time.Time      `json:"valid_to" db:"valid_to"`
	Active          bool           `json:"active" db:"active"`
	ApplicableRooms sql.NullString `json:"applicable_rooms,omitempty" db:"applicable_rooms"`
}

func (p *Promotion) ValidAt(t time.Time) bool {
	return p.Active && !t.Before(p.ValidFrom) && !t.After(p.ValidTo)
}

// RoomIDs разбирает список применимых номеров; (nil, true) означает без ограничений
func (p *Promotion) RoomIDs() ([]int64, bool) {
	if !p.ApplicableRooms.Valid || p.ApplicableRooms.String == "" {
		return nil, true
	}
	var ids []int64
	if err := json.Unmarshal([]byte(p.ApplicableRooms.String), &ids); err != nil {
		return nil, false
	}
	return ids, true
}

type Coupon struct {
	ID            int64        `json:"id" db:"id"`
	Code          string       `json:"code" db:"code"`
	DiscountType  DiscountType `json:"discount_type" db:"discount_type"`
	DiscountValue float64      `json:"discount_value" db:"discount_value"`
	UsageLimit    *int         `json:"usage_limit,omitempty" db:"usage_limit"`
	UsedCount     int          `json:"used_count" db:"used_count"`
	ValidFrom     time.Time    `json:"valid_from" db:"valid_from"`
	ValidTo       time.Time    `json:"valid_to" db:"valid_to"`
	Active        bool         `json:"active" db:"active"`
}

func (c *Coupon) ValidAt(t time.Time) bool {
	return c.Active && !t.Before(c.ValidFrom) && !t.After(c.ValidTo)
}

// Exhausted сообщает, исчерпан ли лимит использований купона
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit
}
