package email

import (
	"fmt"
)

// ReminderEmailData contains the data needed for appointment email templates.
type ReminderEmailData struct {
	FirstName string
	Email     string
	Date      string // calendar day, e.g. "2026-09-14"
	Time      string // slot token, e.g. "08:30"
	AppName   string
}

func (d ReminderEmailData) appName() string {
	if d.AppName == "" {
		return "Dentavia"
	}
	return d.AppName
}

func (d ReminderEmailData) firstName() string {
	if d.FirstName == "" {
		return "there"
	}
	return d.FirstName
}

// BuildReminderEmail creates the upcoming-appointment reminder message.
// windowClass labels how far out the reminder fires, e.g. "24h" or "1h".
func BuildReminderEmail(data ReminderEmailData, windowClass string) Message {
	appName := data.appName()
	firstName := data.firstName()

	subject := fmt.Sprintf("Reminder: your appointment on %s at %s", data.Date, data.Time)

	textBody := fmt.Sprintf(`Hi %s,

This is a reminder that you have an appointment scheduled:

    Date: %s
    Time: %s

If you can no longer make it, please cancel or reschedule so the slot can
be offered to another patient.

Thanks,
The %s Team`,
		firstName, data.Date, data.Time, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>This is a reminder that you have an upcoming appointment:</p>
    <table style="margin: 20px 0; border-collapse: collapse;">
        <tr><td style="padding: 4px 12px 4px 0; font-weight: bold;">Date</td><td>%s</td></tr>
        <tr><td style="padding: 4px 12px 4px 0; font-weight: bold;">Time</td><td>%s</td></tr>
    </table>
    <p>If you can no longer make it, please cancel or reschedule so the slot can be offered to another patient.</p>
    <p style="color: #6b7280; font-size: 14px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		firstName, data.Date, data.Time, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
		Headers:  map[string]string{"X-Reminder-Class": windowClass},
	}
}

// BuildConfirmationEmail creates the appointment-confirmed message.
func BuildConfirmationEmail(data ReminderEmailData) Message {
	appName := data.appName()
	firstName := data.firstName()

	subject := fmt.Sprintf("Your appointment on %s at %s is confirmed", data.Date, data.Time)

	textBody := fmt.Sprintf(`Hi %s,

Your appointment has been confirmed:

    Date: %s
    Time: %s

See you then,
The %s Team`,
		firstName, data.Date, data.Time, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>Your appointment has been <strong>confirmed</strong>:</p>
    <table style="margin: 20px 0; border-collapse: collapse;">
        <tr><td style="padding: 4px 12px 4px 0; font-weight: bold;">Date</td><td>%s</td></tr>
        <tr><td style="padding: 4px 12px 4px 0; font-weight: bold;">Time</td><td>%s</td></tr>
    </table>
    <p style="color: #6b7280; font-size: 14px;">See you then,<br>The %s Team</p>
</body>
</html>`,
		firstName, data.Date, data.Time, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
