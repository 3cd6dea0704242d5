package repository

import (
	"context"
	"database/sql"
	"errors"

	"family-tracker/backend/internal/db/sqlc/gen"
	"family-tracker/backend/internal/settings/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a settings repository backed by the smtp_settings table.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// Get returns the newest smtp_settings row, or nil if the table is empty.
func (r *PostgresRepository) Get(ctx context.Context) (*domain.Notification, error) {
	row, err := r.queries.GetLatestSmtpSettings(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	n := &domain.Notification{
		SMTP: domain.SMTP{
			Host:      row.SmtpHost,
			Port:      int(row.SmtpPort),
			Secure:    row.SmtpSecure,
			User:      row.SmtpUser,
			Password:  row.SmtpPassword,
			FromEmail: row.FromEmail,
			FromName:  row.FromName,
		},
		AdminEmail:         row.AdminEmail,
		NotificationEmails: domain.ParseEmailList(row.NotificationEmails),
		Monitoring: domain.Monitoring{
			NotifyLowBattery:     row.NotifyLowBattery,
			LowBatteryThreshold:  int(row.LowBatteryThreshold),
			NotifyDeviceOffline:  row.NotifyDeviceOffline,
			DeviceOfflineMinutes: int(row.DeviceOfflineMinutes),
		},
	}
	if n.Monitoring.LowBatteryThreshold <= 0 {
		n.Monitoring.LowBatteryThreshold = domain.DefaultLowBatteryThreshold
	}
	if n.Monitoring.DeviceOfflineMinutes <= 0 {
		n.Monitoring.DeviceOfflineMinutes = domain.DefaultDeviceOfflineMinutes
	}
	return n, nil
}

// Create appends a settings row; it becomes the active configuration.
func (r *PostgresRepository) Create(ctx context.Context, n *domain.Notification) error {
	emails := n.NotificationEmails
	if emails == nil {
		emails = []string{}
	}
	_, err := r.queries.CreateSmtpSettings(ctx, gen.CreateSmtpSettingsParams{
		SmtpHost:             n.SMTP.Host,
		SmtpPort:             int32(n.SMTP.Port),
		SmtpSecure:           n.SMTP.Secure,
		SmtpUser:             n.SMTP.User,
		SmtpPassword:         n.SMTP.Password,
		FromEmail:            n.SMTP.FromEmail,
		FromName:             n.SMTP.FromName,
		AdminEmail:           n.AdminEmail,
		NotificationEmails:   emails,
		NotifyLowBattery:     n.Monitoring.NotifyLowBattery,
		LowBatteryThreshold:  int32(n.Monitoring.LowBatteryThreshold),
		NotifyDeviceOffline:  n.Monitoring.NotifyDeviceOffline,
		DeviceOfflineMinutes: int32(n.Monitoring.DeviceOfflineMinutes),
	})
	return err
}
