package notify

import (
	"fmt"
	"strings"
	"time"

	"family-tracker/backend/internal/geo"
)

// Email is a rendered subject and plain-text body.
type Email struct {
	Subject string
	Body    string
}

const (
	footer        = "This is an automated notification from Family Tracker."
	timestampForm = "2006-01-02 15:04:05 MST"
)

// MapsLink returns a Google Maps link for c.
func MapsLink(c geo.Coordinate) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%.6f,%.6f", c.Latitude, c.Longitude)
}

// FormatOffline renders minutes as "Xh Ym", omitting the hour part when zero.
func FormatOffline(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// GeofenceAlert renders the email for a boundary crossing. action is "entered" or "exited".
func GeofenceAlert(userName, fenceName, action string, c geo.Coordinate, at time.Time) Email {
	subject := fmt.Sprintf("Geofence Alert: %s %s %s", userName, action, fenceName)
	what := "Entered geofence area"
	if action == "exited" {
		what = "Exited geofence area"
	}
	var b strings.Builder
	b.WriteString(subject + "\n\n")
	fmt.Fprintf(&b, "User: %s\n", userName)
	fmt.Fprintf(&b, "Geofence: %s\n", fenceName)
	fmt.Fprintf(&b, "Action: %s\n", what)
	fmt.Fprintf(&b, "Location: %.6f, %.6f\n", c.Latitude, c.Longitude)
	fmt.Fprintf(&b, "Timestamp: %s\n\n", at.UTC().Format(timestampForm))
	fmt.Fprintf(&b, "View on Google Maps: %s\n\n", MapsLink(c))
	b.WriteString(footer + "\n")
	return Email{Subject: subject, Body: b.String()}
}

// LowBatteryAlert renders the low battery warning.
func LowBatteryAlert(userName, userEmail string, battery, threshold int, lastUpdate time.Time) Email {
	subject := fmt.Sprintf("Low Battery Alert: %s", userName)
	var b strings.Builder
	b.WriteString("Low Battery Warning\n\n")
	fmt.Fprintf(&b, "%s has a low battery level.\n\n", withEmail(userName, userEmail))
	fmt.Fprintf(&b, "Current Battery: %d%%\n", battery)
	fmt.Fprintf(&b, "Threshold: %d%%\n", threshold)
	fmt.Fprintf(&b, "Last Update: %s\n\n", formatLastUpdate(lastUpdate))
	b.WriteString("The device may go offline soon if not charged.\n\n")
	b.WriteString(footer + "\n")
	return Email{Subject: subject, Body: b.String()}
}

// DeviceOfflineAlert renders the offline warning. battery is the last known level, if any.
func DeviceOfflineAlert(userName, userEmail string, minutesOffline, thresholdMinutes int, lastUpdate time.Time, battery *int) Email {
	subject := fmt.Sprintf("Device Offline Alert: %s", userName)
	var b strings.Builder
	b.WriteString("Device Offline Warning\n\n")
	fmt.Fprintf(&b, "%s has not updated their location recently.\n\n", withEmail(userName, userEmail))
	fmt.Fprintf(&b, "Last Update: %s\n", formatLastUpdate(lastUpdate))
	fmt.Fprintf(&b, "Time Offline: %s\n", FormatOffline(minutesOffline))
	fmt.Fprintf(&b, "Threshold: %d minutes\n", thresholdMinutes)
	if battery != nil {
		fmt.Fprintf(&b, "Last Known Battery: %d%%\n", *battery)
	}
	b.WriteString("\nThe device may be turned off or out of coverage.\n\n")
	b.WriteString(footer + "\n")
	return Email{Subject: subject, Body: b.String()}
}

func withEmail(name, email string) string {
	if email == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, email)
}

func formatLastUpdate(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	return t.UTC().Format(timestampForm)
}
