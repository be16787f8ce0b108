package gpsd

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"
)

// Report is one decoded message from the daemon. Concrete types cover the
// known report classes plus the NMEA/RawData passthrough variants and the
// Other fallback for classes this package does not recognize.
//
// Optional fields are pointers throughout: a nil pointer means the
// receiver does not currently have that datum, which is distinct from a
// reported zero.
type Report interface {
	Class() string
}

// TPV is the time-position-velocity report, the primary fix report.
type TPV struct {
	Device      *string    `json:"device"`
	Mode        FixMode    `json:"mode"`
	Status      *int       `json:"status"`
	Time        *time.Time `json:"time"`
	LeapSeconds *int       `json:"leapseconds"`
	Lat         *float64   `json:"lat"`
	Lon         *float64   `json:"lon"`
	Alt         *float64   `json:"alt"`
	AltHAE      *float64   `json:"altHAE"`
	AltMSL      *float64   `json:"altMSL"`
	Track       *float64   `json:"track"`
	MagTrack    *float64   `json:"magtrack"`
	MagVar      *float64   `json:"magvar"`
	Speed       *float64   `json:"speed"`
	Climb       *float64   `json:"climb"`
	Ept         *float64   `json:"ept"`
	Epx         *float64   `json:"epx"`
	Epy         *float64   `json:"epy"`
	Epv         *float64   `json:"epv"`
	Epd         *float64   `json:"epd"`
	Eps         *float64   `json:"eps"`
	Epc         *float64   `json:"epc"`
	Eph         *float64   `json:"eph"`
	Sep         *float64   `json:"sep"`
	GeoidSep    *float64   `json:"geoidSep"`
}

func (TPV) Class() string { return "TPV" }

// SKY is the satellite-visibility report.
type SKY struct {
	Device     *string     `json:"device"`
	Time       *time.Time  `json:"time"`
	XDOP       *float64    `json:"xdop"`
	YDOP       *float64    `json:"ydop"`
	VDOP       *float64    `json:"vdop"`
	TDOP       *float64    `json:"tdop"`
	HDOP       *float64    `json:"hdop"`
	PDOP       *float64    `json:"pdop"`
	GDOP       *float64    `json:"gdop"`
	NSat       *int        `json:"nSat"`
	USat       *int        `json:"uSat"`
	Satellites []Satellite `json:"satellites"`
}

func (SKY) Class() string { return "SKY" }

// GST carries pseudorange noise statistics.
type GST struct {
	Device *string    `json:"device"`
	Time   *time.Time `json:"time"`
	RMS    *float64   `json:"rms"`
	Major  *float64   `json:"major"`
	Minor  *float64   `json:"minor"`
	Orient *float64   `json:"orient"`
	Lat    *float64   `json:"lat"`
	Lon    *float64   `json:"lon"`
	Alt    *float64   `json:"alt"`
	VE     *float64   `json:"ve"`
	VN     *float64   `json:"vn"`
	VU     *float64   `json:"vu"`
}

func (GST) Class() string { return "GST" }

// ATT is the vehicle-attitude report from a compass or gyroscope.
type ATT struct {
	Device  *string    `json:"device"`
	Time    *time.Time `json:"time"`
	Heading *float64   `json:"heading"`
	Pitch   *float64   `json:"pitch"`
	Yaw     *float64   `json:"yaw"`
	Roll    *float64   `json:"roll"`
	Dip     *float64   `json:"dip"`
	MagLen  *float64   `json:"mag_len"`
	MagX    *float64   `json:"mag_x"`
	MagY    *float64   `json:"mag_y"`
	MagZ    *float64   `json:"mag_z"`
	AccLen  *float64   `json:"acc_len"`
	AccX    *float64   `json:"acc_x"`
	AccY    *float64   `json:"acc_y"`
	AccZ    *float64   `json:"acc_z"`
	GyroX   *float64   `json:"gyro_x"`
	GyroY   *float64   `json:"gyro_y"`
	Depth   *float64   `json:"depth"`
	Temp    *float64   `json:"temp"`
}

func (ATT) Class() string { return "ATT" }

// PPS is a pulse-per-second timing report. The wire carries split
// second/nanosecond integer pairs which are folded into time values.
type PPS struct {
	Device    *string
	Real      *time.Time
	Clock     *time.Time
	Precision *int
	QErr      *int
}

func (PPS) Class() string { return "PPS" }

func (p *PPS) UnmarshalJSON(b []byte) error {
	var raw struct {
		Device    *string `json:"device"`
		RealSec   *int64  `json:"real_sec"`
		RealNsec  *int64  `json:"real_nsec"`
		ClockSec  *int64  `json:"clock_sec"`
		ClockNsec *int64  `json:"clock_nsec"`
		Precision *int    `json:"precision"`
		QErr      *int    `json:"qErr"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Device = raw.Device
	p.Real = epochTime(raw.RealSec, raw.RealNsec)
	p.Clock = epochTime(raw.ClockSec, raw.ClockNsec)
	p.Precision = raw.Precision
	p.QErr = raw.QErr
	return nil
}

// TOFF reports the offset between system clock and GPS time.
type TOFF struct {
	Device *string
	Real   *time.Time
	Clock  *time.Time
}

func (TOFF) Class() string { return "TOFF" }

func (t *TOFF) UnmarshalJSON(b []byte) error {
	var raw struct {
		Device    *string `json:"device"`
		RealSec   *int64  `json:"real_sec"`
		RealNsec  *int64  `json:"real_nsec"`
		ClockSec  *int64  `json:"clock_sec"`
		ClockNsec *int64  `json:"clock_nsec"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t.Device = raw.Device
	t.Real = epochTime(raw.RealSec, raw.RealNsec)
	t.Clock = epochTime(raw.ClockSec, raw.ClockNsec)
	return nil
}

func epochTime(sec, nsec *int64) *time.Time {
	if sec == nil {
		return nil
	}
	var ns int64
	if nsec != nil {
		ns = *nsec
	}
	t := time.Unix(*sec, ns).UTC()
	return &t
}

// Devices is the device inventory report.
type Devices struct {
	Devices []Device `json:"devices"`
	Remote  *string  `json:"remote"`
}

func (Devices) Class() string { return "DEVICES" }

// Version identifies the daemon and its protocol revision. It arrives
// unsolicited as a greeting banner and in response to ?VERSION.
type Version struct {
	Release    string  `json:"release"`
	Rev        string  `json:"rev"`
	ProtoMajor int     `json:"proto_major"`
	ProtoMinor int     `json:"proto_minor"`
	Remote     *string `json:"remote"`
}

func (Version) Class() string { return "VERSION" }

// ErrorReport is the daemon's application-level error message. It is
// protocol content delivered as a stream item, never a transport fault.
type ErrorReport struct {
	Message string `json:"message"`
}

func (ErrorReport) Class() string { return "ERROR" }

// Poll is a snapshot of the current fix data from all active devices.
type Poll struct {
	Time   *time.Time `json:"time"`
	Active *int       `json:"active"`
	TPV    []TPV      `json:"tpv"`
	Sky    []SKY      `json:"sky"`
	GST    []GST      `json:"gst"`
}

func (Poll) Class() string { return "POLL" }

// Other preserves messages whose class this package does not recognize.
// The daemon adds classes over time; unknown classes are kept, not
// rejected.
type Other struct {
	ClassName string
	Raw       json.RawMessage
}

func (o Other) Class() string { return o.ClassName }

// NMEA is one verbatim sentence delivered in NMEA mode. The sentence text
// is opaque to this package.
type NMEA struct {
	Sentence string
}

func (NMEA) Class() string { return "NMEA" }

// RawData is one line of raw receiver output delivered in raw mode,
// hex-decoded when the stream was negotiated with HexDump.
type RawData struct {
	Data []byte
}

func (RawData) Class() string { return "RAW" }

var errMissingClass = errors.New("missing class field")

// decodeJSON classifies one JSON-mode line. A recognized class with a
// broken body yields a *DecodeError carrying the class tag and the raw
// line so the caller can keep the stream alive.
func decodeJSON(line []byte) (Report, error) {
	var peek struct {
		Class string `json:"class"`
	}
	if err := json.Unmarshal(line, &peek); err != nil {
		return nil, &DecodeError{Raw: copyBytes(line), Cause: err}
	}
	if peek.Class == "" {
		return nil, &DecodeError{Raw: copyBytes(line), Cause: errMissingClass}
	}

	var (
		rep Report
		err error
	)
	switch peek.Class {
	case "TPV":
		r := TPV{}
		err = json.Unmarshal(line, &r)
		rep = r
	case "SKY":
		r := SKY{}
		err = json.Unmarshal(line, &r)
		rep = r
	case "GST":
		r := GST{}
		err = json.Unmarshal(line, &r)
		rep = r
	case "ATT":
		r := ATT{}
		err = json.Unmarshal(line, &r)
		rep = r
	case "PPS":
		r := PPS{}
		err = json.Unmarshal(line, &r)
		rep = r
	case "TOFF":
		r := TOFF{}
		err = json.Unmarshal(line, &r)
		rep = r
	case "DEVICES":
		r := Devices{}
		err = json.Unmarshal(line, &r)
		rep = r
	case "DEVICE":
		r := Device{}
		err = json.Unmarshal(line, &r)
		rep = r
	case "WATCH":
		r := Watch{}
		err = json.Unmarshal(line, &r)
		rep = r
	case "VERSION":
		r := Version{}
		err = json.Unmarshal(line, &r)
		rep = r
	case "ERROR":
		r := ErrorReport{}
		err = json.Unmarshal(line, &r)
		rep = r
	case "POLL":
		r := Poll{}
		err = json.Unmarshal(line, &r)
		rep = r
	default:
		return Other{ClassName: peek.Class, Raw: copyBytes(line)}, nil
	}
	if err != nil {
		return nil, &DecodeError{Class: peek.Class, Raw: copyBytes(line), Cause: err}
	}
	return rep, nil
}

// decodeLine dispatches one framed line according to the stream mode. In
// NMEA and raw modes no JSON decoding is attempted.
func decodeLine(mode Mode, hexDump bool, line []byte) (Report, error) {
	switch mode {
	case ModeNMEA:
		return NMEA{Sentence: string(line)}, nil
	case ModeRaw:
		if hexDump {
			data := make([]byte, hex.DecodedLen(len(line)))
			n, err := hex.Decode(data, line)
			if err != nil {
				return nil, &DecodeError{Class: "RAW", Raw: copyBytes(line), Cause: err}
			}
			return RawData{Data: data[:n]}, nil
		}
		return RawData{Data: copyBytes(line)}, nil
	default:
		return decodeJSON(line)
	}
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
