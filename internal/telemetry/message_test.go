package telemetry

import (
	"encoding/json"
	"testing"

	"github.com/banshee-data/camera.bridge/internal/transform"
)

func TestEncode_Rounding(t *testing.T) {
	pos := transform.Position{X: 1.23456789, Y: -0.00004, Z: 2.56789}
	rot := transform.Rotation{X: 179.99999, Y: -90.12345, Z: 0.00001}

	m := Encode(pos, rot, 35.456, true)

	if m.Px != 1.2346 {
		t.Errorf("Px = %v, want 1.2346", m.Px)
	}
	if m.Py != -0.0000 && m.Py != 0 {
		t.Errorf("Py = %v, want 0", m.Py)
	}
	if m.Pz != 2.5679 {
		t.Errorf("Pz = %v, want 2.5679", m.Pz)
	}
	if m.Rx != 180.0 {
		t.Errorf("Rx = %v, want 180", m.Rx)
	}
	if m.Ry != -90.1235 {
		t.Errorf("Ry = %v, want -90.1235", m.Ry)
	}
	if m.Rz != 0 {
		t.Errorf("Rz = %v, want 0", m.Rz)
	}
	if m.Fl != 35.46 {
		t.Errorf("Fl = %v, want 35.46", m.Fl)
	}
	if !m.Connected {
		t.Error("Connected = false")
	}
	if m.Event != "" {
		t.Errorf("Event = %q, want empty", m.Event)
	}
}

func TestEncode_WireFieldNames(t *testing.T) {
	m := Encode(transform.Position{X: 1}, transform.Rotation{Y: 2}, 35, false)

	payload, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"px", "py", "pz", "rx", "ry", "rz", "fl", "connected"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("wire message missing field %q", key)
		}
	}
	if _, ok := fields["event"]; ok {
		t.Error("pose message must omit the event field")
	}
}

func TestEncodeEvent(t *testing.T) {
	m := EncodeEvent(EventDisconnected, false)

	if m.Event != EventDisconnected {
		t.Errorf("Event = %q", m.Event)
	}
	if m.Connected {
		t.Error("Connected = true on disconnect event")
	}
	if m.Px != 0 || m.Py != 0 || m.Pz != 0 || m.Rx != 0 || m.Ry != 0 || m.Rz != 0 || m.Fl != 0 {
		t.Errorf("lifecycle message carries pose data: %+v", m)
	}

	payload, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if fields["event"] != "disconnected" {
		t.Errorf("event field = %v", fields["event"])
	}
}
