package entity

import "time"

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusMaintenance RoomStatus = "maintenance"
	RoomStatusInactive    RoomStatus = "inactive"
)

type Room struct {
	ID            int64      `json:"id" db:"id"`
	Number        string     `json:"number" db:"number"`
	Type          string     `json:"type" db:"type"`
	PricePerNight float64    `json:"price_per_night" db:"price_per_night"`
	MaxAdults     int        `json:"max_adults" db:"max_adults"`
	MaxChildren   int        `json:"max_children" db:"max_children"`
	AllowChildren bool       `json:"allow_children" db:"allow_children"`
	Status        RoomStatus `json:"status" db:"status"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// FitsParty проверяет, вмещает ли номер запрошенный состав гостей
func (r *Room) FitsParty(adults, children int) bool {
	if adults > r.MaxAdults {
		return false
	}
	if children > 0 && !r.AllowChildren {
		return false
	}
	return children <= r.MaxChildren
}
