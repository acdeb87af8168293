package entity

import "time"

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodKhalti PaymentMethod = "khalti"
	PaymentMethodEsewa  PaymentMethod = "esewa"
)

// IsInstantConfirm сообщает, подтверждается ли бронирование сразу при оплате
// этим способом; khalti и esewa проходят через внешний шлюз и остаются pending
func (m PaymentMethod) IsInstantConfirm() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodKhalti, PaymentMethodEsewa:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID            int64         `json:"id" db:"id"`
	BookingID     int64         `json:"booking_id" db:"booking_id"`
	TransactionID string        `json:"transaction_id" db:"transaction_id"`
	Method        PaymentMethod `json:"method" db:"method"`
	Amount        float64       `json:"amount" db:"amount"`
	Status        PaymentStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}
