package domain

import (
	"reflect"
	"testing"
)

func TestNotification_Recipients(t *testing.T) {
	n := &Notification{
		AdminEmail:         " admin@example.com ",
		NotificationEmails: []string{"mom@example.com", "", "ADMIN@example.com", "dad@example.com", "mom@example.com"},
	}
	want := []string{"admin@example.com", "mom@example.com", "dad@example.com"}
	if got := n.Recipients(); !reflect.DeepEqual(got, want) {
		t.Errorf("Recipients = %v, want %v", got, want)
	}

	var nilSettings *Notification
	if got := nilSettings.Recipients(); got != nil {
		t.Errorf("nil Recipients = %v, want nil", got)
	}
}

func TestMonitoring_Enabled(t *testing.T) {
	if (Monitoring{}).Enabled() {
		t.Error("both toggles off should not be enabled")
	}
	if !(Monitoring{NotifyLowBattery: true}).Enabled() {
		t.Error("low battery toggle should enable monitoring")
	}
	if !(Monitoring{NotifyDeviceOffline: true}).Enabled() {
		t.Error("offline toggle should enable monitoring")
	}
}

func TestParseEmailList(t *testing.T) {
	testCases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"a@x.io", []string{"a@x.io"}},
		{"a@x.io, ,b@x.io,", []string{"a@x.io", "b@x.io"}},
	}
	for _, tc := range testCases {
		got := ParseEmailList(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseEmailList(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
