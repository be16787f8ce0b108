package gpsd

import (
	"encoding/json"
	"math"
	"time"
)

// FixMode is the quality of a position solution as reported in TPV.
// Values follow gpsd's gps_fix_t.mode.
type FixMode int

const (
	ModeNotSeen FixMode = 0
	ModeNoFix   FixMode = 1
	Mode2D      FixMode = 2
	Mode3D      FixMode = 3
)

func (m FixMode) String() string {
	switch m {
	case ModeNoFix:
		return "no-fix"
	case Mode2D:
		return "2d"
	case Mode3D:
		return "3d"
	default:
		return "not-seen"
	}
}

// Satellite is one entry of a SKY satellite list. Numeric fields other
// than PRN are absent when the receiver has not reported them.
type Satellite struct {
	PRN    int      `json:"PRN"`
	Az     *float64 `json:"az"`
	El     *float64 `json:"el"`
	SS     *float64 `json:"ss"`
	Used   bool     `json:"used"`
	GnssID *int     `json:"gnssid"`
	SvID   *int     `json:"svid"`
	SigID  *int     `json:"sigid"`
	FreqID *int     `json:"freqid"`
	Health *int     `json:"health"`
	PrRes  *float64 `json:"prRes"`
}

// FlexTime accepts the two shapes gpsd uses for device activation times:
// an ISO-8601 string or a numeric unix epoch with fractional seconds.
type FlexTime struct {
	time.Time
}

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		return t.Time.UnmarshalJSON(b)
	}
	var epoch float64
	if err := json.Unmarshal(b, &epoch); err != nil {
		return err
	}
	sec, frac := math.Modf(epoch)
	t.Time = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	return nil
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	return t.Time.MarshalJSON()
}

// Device describes one receiver known to the daemon.
type Device struct {
	Path      *string   `json:"path"`
	Activated *FlexTime `json:"activated"`
	Flags     *int      `json:"flags"`
	Driver    *string   `json:"driver"`
	Subtype   *string   `json:"subtype"`
	Subtype1  *string   `json:"subtype1"`
	Sernum    *string   `json:"sernum"`
	Hexdata   *string   `json:"hexdata"`
	Native    *int      `json:"native"`
	Bps       *int      `json:"bps"`
	Parity    *string   `json:"parity"`
	Stopbits  *int      `json:"stopbits"`
	Cycle     *float64  `json:"cycle"`
	Mincycle  *float64  `json:"mincycle"`
}

func (Device) Class() string { return "DEVICE" }

// Watch is the body of a ?WATCH command and, coming back from the daemon,
// the echo acknowledging the negotiated configuration. Field order matters:
// encoding/json emits struct fields in declaration order, which keeps the
// encoded command byte-identical for identical values.
type Watch struct {
	Enable  *bool   `json:"enable,omitempty"`
	JSON    *bool   `json:"json,omitempty"`
	NMEA    *bool   `json:"nmea,omitempty"`
	Raw     *int    `json:"raw,omitempty"`
	Scaled  *bool   `json:"scaled,omitempty"`
	Split24 *bool   `json:"split24,omitempty"`
	PPS     *bool   `json:"pps,omitempty"`
	Timing  *bool   `json:"timing,omitempty"`
	Device  *string `json:"device,omitempty"`
	Remote  *string `json:"remote,omitempty"`
}

func (Watch) Class() string { return "WATCH" }

func newBool(b bool) *bool       { return &b }
func newInt(i int) *int          { return &i }
func newString(s string) *string { return &s }
