package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

// Notification channels, used as the metrics label
const (
	ChannelEmail    = "email"
	ChannelSMS      = "sms"
	ChannelTelegram = "telegram"
)

// Mailer sends an HTML email with a text alternative
type Mailer interface {
	IsConfigured() bool
	SendEmail(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// TextMessenger sends an SMS
type TextMessenger interface {
	IsConfigured() bool
	SendSMS(ctx context.Context, to, body string) (*SMSResult, error)
}

// ChatMessenger sends a message to a Telegram chat
type ChatMessenger interface {
	IsConfigured() bool
	SendMessage(chatID int64, text string) error
}

// NotificationRecorder counts delivery attempts
type NotificationRecorder interface {
	ObserveNotification(channel string, err error)
}

// SpendSource supplies the expense lines a report is built from
type SpendSource interface {
	SpendEntries(ctx context.Context, userID int, from, to time.Time) ([]models.SpendEntry, error)
}

// Delivery records which channels a report went out on
type Delivery struct {
	Email    bool     `json:"email"`
	SMS      bool     `json:"sms"`
	Telegram bool     `json:"telegram"`
	Errors   []string `json:"errors,omitempty"`
}

// Sent reports whether at least one channel delivered
func (d *Delivery) Sent() bool {
	return d.Email || d.SMS || d.Telegram
}

// Notifier builds spend reports and delivers them over email, SMS and Telegram
type Notifier struct {
	src      SpendSource
	mail     Mailer
	sms      TextMessenger
	telegram ChatMessenger
	recorder NotificationRecorder
}

// NewNotifier wires the delivery channels. Any channel may be unconfigured.
func NewNotifier(src SpendSource, mail Mailer, sms TextMessenger, telegram ChatMessenger, recorder NotificationRecorder) *Notifier {
	return &Notifier{
		src:      src,
		mail:     mail,
		sms:      sms,
		telegram: telegram,
		recorder: recorder,
	}
}

// BuildReport aggregates the user's spend in [from, to)
func (n *Notifier) BuildReport(ctx context.Context, userID int, title string, from, to time.Time) (*models.SpendReport, error) {
	entries, err := n.src.SpendEntries(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load spend entries: %w", err)
	}
	return BuildSpendReport(userID, title, from, to, entries), nil
}

// SendMonthlyReport delivers the report to every parental contact the user
// has. Failures on one channel do not stop the others; the returned error
// joins all of them.
func (n *Notifier) SendMonthlyReport(ctx context.Context, user *models.User, report *models.SpendReport) (*Delivery, error) {
	d := &Delivery{}
	var errs []error

	fail := func(channel string, err error) {
		errs = append(errs, fmt.Errorf("%s: %w", channel, err))
		d.Errors = append(d.Errors, fmt.Sprintf("%s: %v", channel, err))
		log.WithFields(log.Fields{
			"user_id": user.ID,
			"channel": channel,
		}).WithError(err).Warn("monthly report delivery failed")
	}

	if user.ParentEmail != nil && *user.ParentEmail != "" {
		err := n.sendEmail(ctx, *user.ParentEmail, MonthlyReportSubject, user.FullName, report)
		if err != nil {
			fail(ChannelEmail, err)
		} else {
			d.Email = true
		}
	}

	summary := RenderReportSummary(user.FullName, report)

	if user.ParentPhone != nil && *user.ParentPhone != "" {
		if err := n.sendSMS(ctx, *user.ParentPhone, summary); err != nil {
			fail(ChannelSMS, err)
		} else {
			d.SMS = true
		}
	}

	if user.ParentTelegramChatID != nil {
		if err := n.sendTelegram(*user.ParentTelegramChatID, summary); err != nil {
			fail(ChannelTelegram, err)
		} else {
			d.Telegram = true
		}
	}

	return d, errors.Join(errs...)
}

// SendWeeklySummary emails the report to the user themselves
func (n *Notifier) SendWeeklySummary(ctx context.Context, user *models.User, report *models.SpendReport) error {
	if err := n.sendEmail(ctx, user.Email, WeeklyReportSubject, user.FullName, report); err != nil {
		log.WithField("user_id", user.ID).WithError(err).Warn("weekly summary delivery failed")
		return err
	}
	return nil
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, name string, report *models.SpendReport) error {
	if n.mail == nil || !n.mail.IsConfigured() {
		log.WithField("to", to).Info("SMTP not configured, email not sent")
		return ErrEmailNotConfigured
	}
	html, err := RenderReportHTML(name, report)
	if err != nil {
		return err
	}
	err = n.mail.SendEmail(ctx, to, subject, html, RenderReportText(name, report))
	n.observe(ChannelEmail, err)
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, body string) error {
	if n.sms == nil || !n.sms.IsConfigured() {
		log.WithField("to", to).Info("Twilio not configured, SMS not sent")
		return errors.New("Twilio not configured")
	}
	result, err := n.sms.SendSMS(ctx, to, body)
	if err == nil && result != nil && !result.Success {
		err = errors.New(result.Message)
	}
	n.observe(ChannelSMS, err)
	return err
}

func (n *Notifier) sendTelegram(chatID int64, text string) error {
	if n.telegram == nil || !n.telegram.IsConfigured() {
		log.WithField("chat_id", chatID).Info("Telegram not configured, message not sent")
		return ErrTelegramNotConfigured
	}
	err := n.telegram.SendMessage(chatID, text)
	n.observe(ChannelTelegram, err)
	return err
}

func (n *Notifier) observe(channel string, err error) {
	if n.recorder != nil {
		n.recorder.ObserveNotification(channel, err)
	}
}
