package types

import (
	"encoding/json"
	"testing"
)

func TestGroupID_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		id   GroupID
		wire string
	}{
		{"7", `7`},
		{"0", `0`},
		{"-3", `-3`},
		{"007", `"007"`},
		{"+5", `"+5"`},
		{"new", `"new"`},
		{"", `""`},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			data, err := json.Marshal(tt.id)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.wire {
				t.Errorf("Marshal(%q) = %s, want %s", tt.id, data, tt.wire)
			}

			var back GroupID
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if back != tt.id {
				t.Errorf("round trip = %q, want %q", back, tt.id)
			}
		})
	}
}

func TestGroupID_UnmarshalNumberOrString(t *testing.T) {
	var msg ActionMessage
	if err := json.Unmarshal([]byte(`{"action":"load-custom-group","groupId":12}`), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.GroupID == nil || *msg.GroupID != "12" {
		t.Errorf("groupId = %v, want 12", msg.GroupID)
	}
}
