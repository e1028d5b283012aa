package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Runner executes a notification command
type Runner func(name string, args ...string) error

func execRunner(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
	run     Runner
}

// NewNotifier creates a notifier backed by notify-send
func NewNotifier() *Notifier {
	return &Notifier{
		enabled: true,
		run:     execRunner,
	}
}

// WithRunner replaces the command runner, mostly for tests
func (n *Notifier) WithRunner(r Runner) *Notifier {
	n.run = r
	return n
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}

	args := []string{}

	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// notify-send wants milliseconds
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	args = append(args, "-a", "leadboard")

	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}

	return n.run("notify-send", args...)
}

// SendNewLead announces a lead that arrived through intake
func (n *Notifier) SendNewLead(title, column string) error {
	body := title
	if column != "" {
		body = fmt.Sprintf("%s → %s", title, column)
	}
	return n.Send(Notification{
		Title:   "Novo lead",
		Body:    body,
		Urgency: UrgencyNormal,
		Timeout: 10 * time.Second,
		Icon:    "contact-new-symbolic",
	})
}

// SendSaveFailed reports that the board could not be persisted
func (n *Notifier) SendSaveFailed(err error) error {
	return n.Send(Notification{
		Title:   "leadboard: save failed",
		Body:    err.Error(),
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "dialog-error-symbolic",
	})
}

// SendOverdue reports how many tasks are past their due date
func (n *Notifier) SendOverdue(count int) error {
	if count <= 0 {
		return nil
	}
	body := "1 task is overdue"
	if count > 1 {
		body = fmt.Sprintf("%d tasks are overdue", count)
	}
	return n.Send(Notification{
		Title:   "leadboard",
		Body:    body,
		Urgency: UrgencyNormal,
		Timeout: 10 * time.Second,
		Icon:    "emblem-important-symbolic",
	})
}
