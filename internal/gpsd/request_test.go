package gpsd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWatchJSON(t *testing.T) {
	cmd, err := encodeWatch(JSONOptions().watch())
	require.NoError(t, err)
	assert.Equal(t, "?WATCH={\"enable\":true,\"json\":true};\n", string(cmd))
}

func TestEncodeWatchJSONFull(t *testing.T) {
	opts := JSONOptions().PPS(true).Timing(true).Scaled(true).Device("/dev/ttyUSB0")
	cmd, err := encodeWatch(opts.watch())
	require.NoError(t, err)
	assert.Equal(t,
		"?WATCH={\"enable\":true,\"json\":true,\"scaled\":true,\"pps\":true,\"timing\":true,\"device\":\"/dev/ttyUSB0\"};\n",
		string(cmd))
}

func TestEncodeWatchNMEA(t *testing.T) {
	cmd, err := encodeWatch(NMEAOptions().Device("/dev/gps0").watch())
	require.NoError(t, err)
	assert.Equal(t, "?WATCH={\"enable\":true,\"nmea\":true,\"device\":\"/dev/gps0\"};\n", string(cmd))
}

func TestEncodeWatchRaw(t *testing.T) {
	cmd, err := encodeWatch(RawOptions().HexDump(true).watch())
	require.NoError(t, err)
	assert.Equal(t, "?WATCH={\"enable\":true,\"raw\":1};\n", string(cmd))

	cmd, err = encodeWatch(RawOptions().watch())
	require.NoError(t, err)
	assert.Equal(t, "?WATCH={\"enable\":true,\"raw\":2};\n", string(cmd))
}

func TestEncodeWatchIgnoresFlagsForeignToMode(t *testing.T) {
	// pps, timing and hex dump have no meaning outside their modes and
	// must not leak into the command
	cmd, err := encodeWatch(NMEAOptions().PPS(true).Timing(true).HexDump(true).watch())
	require.NoError(t, err)
	assert.Equal(t, "?WATCH={\"enable\":true,\"nmea\":true};\n", string(cmd))
}

func TestEncodeWatchDeterministic(t *testing.T) {
	opts := JSONOptions().Scaled(true).Split24(true).Device("/dev/ttyACM0")
	first, err := encodeWatch(opts.watch())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := encodeWatch(opts.watch())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncodeWatchOff(t *testing.T) {
	assert.Equal(t, "?WATCH={\"enable\":false};\n", string(encodeWatchOff()))
}

func TestOptionsCopySemantics(t *testing.T) {
	base := JSONOptions()
	derived := base.Device("/dev/ttyUSB0").PPS(true)

	cmd, err := encodeWatch(base.watch())
	require.NoError(t, err)
	assert.Equal(t, "?WATCH={\"enable\":true,\"json\":true};\n", string(cmd))
	assert.Equal(t, ModeJSON, derived.Mode())
}
