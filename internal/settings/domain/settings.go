package domain

import "strings"

// Defaults applied when a stored threshold is missing or non-positive.
const (
	DefaultLowBatteryThreshold  = 20
	DefaultDeviceOfflineMinutes = 30
)

// SMTP is the outgoing mail server configuration.
type SMTP struct {
	Host      string
	Port      int
	Secure    bool // implicit TLS (typically port 465); otherwise STARTTLS when offered
	User      string
	Password  string
	FromEmail string
	FromName  string
}

// Monitoring holds the device health toggles and thresholds.
type Monitoring struct {
	NotifyLowBattery     bool
	LowBatteryThreshold  int // percent, inclusive
	NotifyDeviceOffline  bool
	DeviceOfflineMinutes int // inclusive
}

// Enabled reports whether at least one device health check is turned on.
func (m Monitoring) Enabled() bool {
	return m.NotifyLowBattery || m.NotifyDeviceOffline
}

// Notification is the current notification configuration: transport, recipients, and monitoring.
type Notification struct {
	SMTP               SMTP
	AdminEmail         string
	NotificationEmails []string
	Monitoring         Monitoring
}

// Recipients returns the admin address followed by the additional addresses,
// trimmed, with blanks and duplicates removed.
func (n *Notification) Recipients() []string {
	if n == nil {
		return nil
	}
	seen := make(map[string]bool, len(n.NotificationEmails)+1)
	out := make([]string, 0, len(n.NotificationEmails)+1)
	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, addr)
	}
	add(n.AdminEmail)
	for _, e := range n.NotificationEmails {
		add(e)
	}
	return out
}

// ParseEmailList splits a comma-separated address list, dropping blanks.
func ParseEmailList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
