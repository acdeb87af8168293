package queue

import (
	"fmt"
	"log"
)

// EmailSender отправляет письма гостям
type EmailSender interface {
	Send(to, subject, body string) error
}

// OpsNotifier отправляет служебные уведомления фронт-офису
type OpsNotifier interface {
	Notify(text string) error
}

// TaskHandler выполняет задачи очереди: письма подтверждения,
// уведомления фронт-офиса и напоминания о заезде
type TaskHandler struct {
	mailer   EmailSender
	notifier OpsNotifier
}

func NewTaskHandler(mailer EmailSender, notifier OpsNotifier) *TaskHandler {
	return &TaskHandler{
		mailer:   mailer,
		notifier: notifier,
	}
}

// HandleTask dispatches a task to the matching handler
func (h *TaskHandler) HandleTask(task *Task) error {
	switch task.Type {
	case TaskTypeConfirmationEmail:
		return h.handleConfirmationEmail(task)
	case TaskTypeBookingNotification:
		return h.handleBookingNotification(task)
	case TaskTypeCheckinReminder:
		return h.handleCheckinReminder(task)
	default:
		return fmt.Errorf("invalid task type: %s", task.Type)
	}
}

func (h *TaskHandler) handleConfirmationEmail(task *Task) error {
	if h.mailer == nil {
		return nil
	}

	email := task.GetString("guest_email")
	if email == "" {
		return fmt.Errorf("missing guest_email in task %s", task.ID)
	}

	reference := task.GetString("reference")
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your booking %s is %s.\n"+
			"Room: %s\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n"+
			"Total amount: %s\n\n"+
			"We look forward to welcoming you.",
		task.GetString("guest_name"),
		reference,
		task.GetString("status"),
		task.GetString("room_number"),
		task.GetString("check_in"),
		task.GetString("check_out"),
		task.GetString("total_amount"),
	)

	if err := h.mailer.Send(email, "Booking confirmation "+reference, body); err != nil {
		return fmt.Errorf("confirmation email for booking %s: %w", reference, err)
	}

	log.Printf("Confirmation email sent for booking %s", reference)
	return nil
}

func (h *TaskHandler) handleBookingNotification(task *Task) error {
	if h.notifier == nil {
		return nil
	}

	message := fmt.Sprintf(
		"🏨 %s\nBooking: %s\nRoom: %s\nDates: %s — %s\nGuest: %s",
		task.GetString("event"),
		task.GetString("reference"),
		task.GetString("room_number"),
		task.GetString("check_in"),
		task.GetString("check_out"),
		task.GetString("guest_name"),
	)

	return h.notifier.Notify(message)
}

func (h *TaskHandler) handleCheckinReminder(task *Task) error {
	if h.mailer == nil {
		return nil
	}

	email := task.GetString("guest_email")
	if email == "" {
		return fmt.Errorf("missing guest_email in task %s", task.ID)
	}

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"This is a reminder that your stay begins on %s.\n"+
			"Booking reference: %s\n\n"+
			"See you soon!",
		task.GetString("guest_name"),
		task.GetString("check_in"),
		task.GetString("reference"),
	)

	return h.mailer.Send(email, "Upcoming stay reminder", body)
}
