package domain

import (
	"strings"
	"testing"
)

func TestMessage_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"valid", Message{FamilyID: "f1", UserID: "u1", Content: "hi"}, false},
		{"no family", Message{UserID: "u1", Content: "hi"}, true},
		{"no user", Message{FamilyID: "f1", Content: "hi"}, true},
		{"empty", Message{FamilyID: "f1", UserID: "u1"}, true},
		{"at limit", Message{FamilyID: "f1", UserID: "u1", Content: strings.Repeat("a", MaxContentLength)}, false},
		{"over limit", Message{FamilyID: "f1", UserID: "u1", Content: strings.Repeat("a", MaxContentLength+1)}, true},
		{"multibyte at limit", Message{FamilyID: "f1", UserID: "u1", Content: strings.Repeat("é", MaxContentLength)}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
