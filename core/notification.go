package core

import (
	"net/mail"
	"time"
)

// Notification event names.
const (
	EventCheckedIn        = "attendance.checked_in"
	EventCheckedOut       = "attendance.checked_out"
	EventAbsenceRequested = "attendance.absence_requested"
	EventRecordReviewed   = "attendance.record_reviewed"
	EventMarkedAbsent     = "attendance.marked_absent"
)

type (
	// Event is a notification record handed off to a NotificationService.
	Event struct {
		Name      string
		StudentID string
		RecordID  string
		Occurred  time.Time
		Recipient mail.Address // zero value: service falls back to the placement inbox
		Subject   string
		Body      string
	}

	// NotificationService accepts event records for delivery.
	// Delivery is fire-and-forget: implementations never block the caller
	// and never surface failures as errors; they log and move on.
	NotificationService interface {
		Notify(events ...Event)
	}
)

func (e Event) HasRecipient() bool { return e.Recipient.Address != "" }
