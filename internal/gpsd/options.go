package gpsd

// Mode selects the payload shape of a stream. Exactly one mode is active
// per stream.
type Mode int

const (
	ModeJSON Mode = iota
	ModeNMEA
	ModeRaw
)

func (m Mode) String() string {
	switch m {
	case ModeNMEA:
		return "nmea"
	case ModeRaw:
		return "raw"
	default:
		return "json"
	}
}

// StreamOptions configures a watch stream. Construct with JSONOptions,
// NMEAOptions or RawOptions and refine with the chain methods; each method
// returns a modified copy, the value handed to Client.Stream is never
// mutated afterwards.
type StreamOptions struct {
	mode    Mode
	pps     bool
	timing  bool
	scaled  bool
	split24 bool
	hexDump bool
	device  string
}

// JSONOptions requests structured JSON reports.
func JSONOptions() StreamOptions { return StreamOptions{mode: ModeJSON} }

// NMEAOptions requests raw NMEA sentence passthrough.
func NMEAOptions() StreamOptions { return StreamOptions{mode: ModeNMEA} }

// RawOptions requests raw receiver data passthrough.
func RawOptions() StreamOptions { return StreamOptions{mode: ModeRaw} }

// PPS requests pulse-per-second timing reports. Only meaningful in JSON
// mode; ignored by the encoder otherwise.
func (o StreamOptions) PPS(enable bool) StreamOptions { o.pps = enable; return o }

// Timing requests internal timing diagnostics. Only meaningful in JSON
// mode; ignored by the encoder otherwise.
func (o StreamOptions) Timing(enable bool) StreamOptions { o.timing = enable; return o }

// Scaled asks the daemon to apply unit scaling to output values.
func (o StreamOptions) Scaled(enable bool) StreamOptions { o.scaled = enable; return o }

// Split24 asks the daemon to split AIS type 24 messages.
func (o StreamOptions) Split24(enable bool) StreamOptions { o.split24 = enable; return o }

// HexDump selects hex-dumped raw output. Only meaningful in raw mode;
// ignored by the encoder otherwise.
func (o StreamOptions) HexDump(enable bool) StreamOptions { o.hexDump = enable; return o }

// Device restricts reporting to one device path.
func (o StreamOptions) Device(path string) StreamOptions { o.device = path; return o }

// Mode reports the payload mode the options select.
func (o StreamOptions) Mode() Mode { return o.mode }

// watch builds the wire-level WATCH body. Flags that have no meaning for
// the selected mode are dropped here; they never change the mode.
func (o StreamOptions) watch() Watch {
	w := Watch{Enable: newBool(true)}
	switch o.mode {
	case ModeJSON:
		w.JSON = newBool(true)
		if o.pps {
			w.PPS = newBool(true)
		}
		if o.timing {
			w.Timing = newBool(true)
		}
	case ModeNMEA:
		w.NMEA = newBool(true)
	case ModeRaw:
		// raw=1 is hex-dumped text, raw=2 is pass-through binary.
		if o.hexDump {
			w.Raw = newInt(1)
		} else {
			w.Raw = newInt(2)
		}
	}
	if o.scaled {
		w.Scaled = newBool(true)
	}
	if o.split24 {
		w.Split24 = newBool(true)
	}
	if o.device != "" {
		w.Device = newString(o.device)
	}
	return w
}
