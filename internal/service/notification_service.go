package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	"github.com/noah-isme/clinic-scheduling-api/pkg/jobs"
	"github.com/noah-isme/clinic-scheduling-api/pkg/mailer"
)

// NotificationJobType is the queue job type for booking emails.
const NotificationJobType = "booking_notification"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type mailSender interface {
	Enabled() bool
	Send(ctx context.Context, msg mailer.Message) error
}

// BookingNotification is the queued payload for one booking email.
type BookingNotification struct {
	Event   BookingEvent
	Booking models.Booking
}

// NotificationService queues booking emails. It implements BookingNotifier.
type NotificationService struct {
	queue  jobDispatcher
	logger *zap.Logger
}

// NewNotificationService builds the producer side of booking notifications.
func NewNotificationService(queue jobDispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{queue: queue, logger: logger}
}

// BookingChanged queues an email for the booking's client.
func (s *NotificationService) BookingChanged(ctx context.Context, event BookingEvent, booking models.Booking) error {
	if s.queue == nil {
		return nil
	}
	job := jobs.Job{
		ID:      fmt.Sprintf("%s:%s", booking.ID, event),
		Type:    NotificationJobType,
		Payload: BookingNotification{Event: event, Booking: booking},
	}
	if err := s.queue.Enqueue(job); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	s.logger.Debug("booking notification queued", zap.String("booking_id", booking.ID), zap.String("event", string(event)))
	return nil
}

// NotificationWorker renders and sends queued booking emails.
type NotificationWorker struct {
	mail     mailSender
	location *time.Location
	logger   *zap.Logger
}

// NewNotificationWorker constructs a worker.
func NewNotificationWorker(mail mailSender, location *time.Location, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &NotificationWorker{mail: mail, location: location, logger: logger}
}

// Handle processes a queue job.
func (w *NotificationWorker) Handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(BookingNotification)
	if !ok {
		w.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	if w.mail == nil || !w.mail.Enabled() {
		w.logger.Info("mail disabled, notification skipped",
			zap.String("booking_id", payload.Booking.ID), zap.String("event", string(payload.Event)))
		return nil
	}

	msg := w.Compose(payload)
	if err := w.mail.Send(ctx, msg); err != nil {
		if errors.Is(err, mailer.ErrDisabled) {
			return nil
		}
		return err
	}
	w.logger.Info("booking notification sent",
		zap.String("booking_id", payload.Booking.ID), zap.String("event", string(payload.Event)))
	return nil
}

// Compose renders the email for a booking event.
func (w *NotificationWorker) Compose(n BookingNotification) mailer.Message {
	start := n.Booking.SessionStart.In(w.location)
	when := start.Format("Monday 2 January 2006 at 15:04")

	var subject, body string
	switch n.Event {
	case BookingEventCreated:
		subject = "Your session is confirmed"
		body = fmt.Sprintf("Hello %s,\n\nYour session with %s is confirmed for %s.", n.Booking.ClientName, n.Booking.TherapistName, when)
	case BookingEventRescheduled:
		subject = "Your session was rescheduled"
		body = fmt.Sprintf("Hello %s,\n\nYour session with %s now takes place on %s.", n.Booking.ClientName, n.Booking.TherapistName, when)
	case BookingEventCancelled:
		subject = "Your session was cancelled"
		body = fmt.Sprintf("Hello %s,\n\nYour session with %s on %s has been cancelled.", n.Booking.ClientName, n.Booking.TherapistName, when)
	default:
		subject = "Booking update"
		body = fmt.Sprintf("Hello %s,\n\nThere is an update to your session on %s.", n.Booking.ClientName, when)
	}

	return mailer.Message{
		To:       []string{n.Booking.ClientEmail},
		Subject:  subject,
		TextBody: body,
	}
}
