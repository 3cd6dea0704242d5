package realtime

import "testing"

func TestEncode(t *testing.T) {
	got, err := Encode(KindConnected, Welcome{Message: welcomeMessage, FamilyID: "f1"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"type":"connected","data":{"message":"Connected to Family Tracker","familyId":"f1"}}`
	if string(got) != want {
		t.Errorf("Encode = %s, want %s", got, want)
	}
}
