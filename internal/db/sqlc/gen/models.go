package gen

import (
	"database/sql"
	"time"
)

type DeviceStatusNotification struct {
	ID               string
	UserID           string
	NotificationType string
	SentAt           time.Time
	BatteryLevel     sql.NullInt32
	MinutesOffline   sql.NullInt32
}

type Family struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Geofence struct {
	ID            string
	FamilyID      string
	Name          string
	Latitude      float64
	Longitude     float64
	Radius        int32
	UserID        sql.NullString
	IsActive      bool
	NotifyOnExit  bool
	NotifyOnEnter bool
	CreatedBy     sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type GeofenceViolation struct {
	ID                 string
	GeofenceID         string
	UserID             string
	ViolationType      string
	Latitude           float64
	Longitude          float64
	OccurredAt         time.Time
	Notified           bool
	NotificationSentAt sql.NullTime
	CreatedAt          time.Time
}

type Location struct {
	ID         int64
	UserID     string
	Latitude   float64
	Longitude  float64
	Accuracy   sql.NullFloat64
	Altitude   sql.NullFloat64
	Battery    sql.NullInt32
	CapturedAt time.Time
	CreatedAt  time.Time
}

type Message struct {
	ID        int64
	FamilyID  string
	UserID    string
	Message   string
	CreatedAt time.Time
}

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	FamilyID     sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
