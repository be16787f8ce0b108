package gpsd

import "encoding/json"

// Commands are ASCII, '?'-prefixed and ';'-terminated. The trailing
// newline flushes single-line buffering on the daemon side.
const (
	cmdVersion = "?VERSION;\n"
	cmdDevices = "?DEVICES;\n"
	cmdPoll    = "?POLL;\n"
)

// encodeWatch renders a ?WATCH command. Identical Watch values encode to
// byte-identical commands.
func encodeWatch(w Watch) ([]byte, error) {
	body, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	cmd := make([]byte, 0, len(body)+10)
	cmd = append(cmd, "?WATCH="...)
	cmd = append(cmd, body...)
	cmd = append(cmd, ';', '\n')
	return cmd, nil
}

func encodeWatchOff() []byte {
	cmd, _ := encodeWatch(Watch{Enable: newBool(false)})
	return cmd
}
