// Package telemetry builds and transmits the JSON pose messages consumed by
// the downstream graphics engine.
package telemetry

import (
	"math"

	"github.com/banshee-data/camera.bridge/internal/transform"
)

// Lifecycle event tags carried out-of-band from continuous pose telemetry.
const (
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
)

// Message is one UDP datagram payload. Pose fields are zero on pure
// lifecycle messages; Event is empty on pose messages.
type Message struct {
	Px        float64 `json:"px"`
	Py        float64 `json:"py"`
	Pz        float64 `json:"pz"`
	Rx        float64 `json:"rx"`
	Ry        float64 `json:"ry"`
	Rz        float64 `json:"rz"`
	Fl        float64 `json:"fl"`
	Connected bool    `json:"connected"`
	Event     string  `json:"event,omitempty"`
}

// Rounding precision for wire values. Internal state keeps full float64
// precision; only the serialized message is truncated.
const (
	posePlaces  = 4
	focalPlaces = 2
)

// Encode packages a decoded pose into a wire message. Values are rounded
// half-away-from-zero (math.Round) to a fixed number of decimals: position
// and rotation to 4, focal length to 2.
func Encode(pos transform.Position, rot transform.Rotation, focalLength float64, connected bool) Message {
	return Message{
		Px:        roundTo(pos.X, posePlaces),
		Py:        roundTo(pos.Y, posePlaces),
		Pz:        roundTo(pos.Z, posePlaces),
		Rx:        roundTo(rot.X, posePlaces),
		Ry:        roundTo(rot.Y, posePlaces),
		Rz:        roundTo(rot.Z, posePlaces),
		Fl:        roundTo(focalLength, focalPlaces),
		Connected: connected,
	}
}

// EncodeEvent packages a connection lifecycle transition. The pose fields
// stay zero; the event tag is the content-bearing field.
func EncodeEvent(event string, connected bool) Message {
	return Message{Connected: connected, Event: event}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
