package worker

import (
	"context"
	"time"

	"github.com/ds124wfegd/hotel-booking/internal/service"

	"github.com/sirupsen/logrus"
)

// NightAuditWorker периодически закрывает прошедшие проживания и снимает
// pending брони, чей заезд уже прошел
type NightAuditWorker struct {
	bookingService service.BookingService
	interval       time.Duration
}

func NewNightAuditWorker(bookingService service.BookingService, interval time.Duration) *NightAuditWorker {
	return &NightAuditWorker{
		bookingService: bookingService,
		interval:       interval,
	}
}

func (w *NightAuditWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Night audit worker started")

	// Первый проход сразу после старта
	w.runAudit(ctx)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Night audit worker stopped")
			return
		case <-ticker.C:
			w.runAudit(ctx)
		}
	}
}

func (w *NightAuditWorker) runAudit(ctx context.Context) {
	if err := w.bookingService.RunNightAudit(ctx); err != nil {
		logrus.Errorf("Night audit failed: %v", err)
	}
}
