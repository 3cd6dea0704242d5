// Query methods for internal/db/queries/settings.sql.

package gen

import (
	"context"
)

const createSmtpSettings = `-- name: CreateSmtpSettings :one
INSERT INTO smtp_settings (smtp_host, smtp_port, smtp_secure, smtp_user, smtp_password, from_email, from_name, admin_email,
                           notification_emails, notify_low_battery, low_battery_threshold, notify_device_offline, device_offline_minutes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id
`

type CreateSmtpSettingsParams struct {
	SmtpHost             string
	SmtpPort             int32
	SmtpSecure           bool
	SmtpUser             string
	SmtpPassword         string
	FromEmail            string
	FromName             string
	AdminEmail           string
	NotificationEmails   []string
	NotifyLowBattery     bool
	LowBatteryThreshold  int32
	NotifyDeviceOffline  bool
	DeviceOfflineMinutes int32
}

func (q *Queries) CreateSmtpSettings(ctx context.Context, arg CreateSmtpSettingsParams) (int32, error) {
	row := q.db.QueryRowContext(ctx, createSmtpSettings,
		arg.SmtpHost,
		arg.SmtpPort,
		arg.SmtpSecure,
		arg.SmtpUser,
		arg.SmtpPassword,
		arg.FromEmail,
		arg.FromName,
		arg.AdminEmail,
		arg.NotificationEmails,
		arg.NotifyLowBattery,
		arg.LowBatteryThreshold,
		arg.NotifyDeviceOffline,
		arg.DeviceOfflineMinutes,
	)
	var id int32
	err := row.Scan(&id)
	return id, err
}

const getLatestSmtpSettings = `-- name: GetLatestSmtpSettings :one
SELECT id, smtp_host, smtp_port, smtp_secure, smtp_user, smtp_password, from_email, from_name, admin_email,
       array_to_string(COALESCE(notification_emails, '{}'::text[]), ',')::text AS notification_emails,
       notify_low_battery, low_battery_threshold, notify_device_offline, device_offline_minutes
FROM smtp_settings
ORDER BY id DESC
LIMIT 1
`

type GetLatestSmtpSettingsRow struct {
	ID                   int32
	SmtpHost             string
	SmtpPort             int32
	SmtpSecure           bool
	SmtpUser             string
	SmtpPassword         string
	FromEmail            string
	FromName             string
	AdminEmail           string
	NotificationEmails   string
	NotifyLowBattery     bool
	LowBatteryThreshold  int32
	NotifyDeviceOffline  bool
	DeviceOfflineMinutes int32
}

func (q *Queries) GetLatestSmtpSettings(ctx context.Context) (GetLatestSmtpSettingsRow, error) {
	row := q.db.QueryRowContext(ctx, getLatestSmtpSettings)
	var i GetLatestSmtpSettingsRow
	err := row.Scan(
		&i.ID,
		&i.SmtpHost,
		&i.SmtpPort,
		&i.SmtpSecure,
		&i.SmtpUser,
		&i.SmtpPassword,
		&i.FromEmail,
		&i.FromName,
		&i.AdminEmail,
		&i.NotificationEmails,
		&i.NotifyLowBattery,
		&i.LowBatteryThreshold,
		&i.NotifyDeviceOffline,
		&i.DeviceOfflineMinutes,
	)
	return i, err
}
