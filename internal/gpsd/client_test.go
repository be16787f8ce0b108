package gpsd

import (
	"bufio"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenConsumesBanner(t *testing.T) {
	c, _ := testClient(t, "")
	v := c.ServerVersion()
	assert.Equal(t, "3.23", v.Release)
	assert.Equal(t, 3, v.ProtoMajor)
	assert.Equal(t, 14, v.ProtoMinor)
}

func TestOpenVersionMismatch(t *testing.T) {
	cases := map[string]string{
		"wrong major": `{"class":"VERSION","release":"4.0","proto_major":4,"proto_minor":0}` + "\n",
		"newer minor": `{"class":"VERSION","release":"3.99","proto_major":3,"proto_minor":99}` + "\n",
	}
	for name, greeting := range cases {
		t.Run(name, func(t *testing.T) {
			tc := &scriptConn{done: make(chan struct{})}
			tc.r = strings.NewReader(greeting)
			_, err := Open(tc, nil)
			var vm *VersionMismatchError
			require.ErrorAs(t, err, &vm)
		})
	}
}

func TestOpenSkipVersionCheck(t *testing.T) {
	greeting := `{"class":"VERSION","release":"4.0","proto_major":4,"proto_minor":0}` + "\n"
	tc := &scriptConn{done: make(chan struct{})}
	tc.r = strings.NewReader(greeting)
	c, err := Open(tc, &Config{SkipVersionCheck: true})
	require.NoError(t, err)
	assert.Equal(t, 4, c.ServerVersion().ProtoMajor)
}

func TestClientVersionQuery(t *testing.T) {
	c, tc := testClient(t, `{"class":"VERSION","release":"3.23","proto_major":3,"proto_minor":14}`+"\n")
	v, err := c.Version()
	require.NoError(t, err)
	assert.Equal(t, "3.23", v.Release)
	assert.Equal(t, "?VERSION;\n", tc.written())
}

func TestClientDevicesQuery(t *testing.T) {
	c, tc := testClient(t, devicesLine)
	devs, err := c.Devices()
	require.NoError(t, err)
	require.Len(t, devs.Devices, 1)
	assert.Equal(t, "?DEVICES;\n", tc.written())
}

func TestClientPollQuery(t *testing.T) {
	c, tc := testClient(t, `{"class":"POLL","active":1,"tpv":[{"mode":3,"lat":1.0,"lon":2.0}]}`+"\n")
	p, err := c.Poll()
	require.NoError(t, err)
	require.Len(t, p.TPV, 1)
	assert.Equal(t, Mode3D, p.TPV[0].Mode)
	assert.Equal(t, "?POLL;\n", tc.written())
}

func TestClientQuerySkipsInterleavedReports(t *testing.T) {
	// a device event may land between request and response
	c, _ := testClient(t, `{"class":"DEVICE","path":"/dev/ttyUSB0"}`+"\n"+devicesLine)
	devs, err := c.Devices()
	require.NoError(t, err)
	require.Len(t, devs.Devices, 1)
}

func TestClientSingleStreamGuard(t *testing.T) {
	c, _ := testClient(t, tpvLine)
	_, err := c.Stream(JSONOptions())
	require.NoError(t, err)

	_, err = c.Stream(JSONOptions())
	assert.ErrorIs(t, err, ErrStreamActive)
	_, err = c.AsyncStream(JSONOptions())
	assert.ErrorIs(t, err, ErrStreamActive)
	_, err = c.Devices()
	assert.ErrorIs(t, err, ErrStreamActive)
}

func TestClientStreamReleaseOnEnd(t *testing.T) {
	c, _ := testClient(t, tpvLine)
	s, err := c.Stream(JSONOptions())
	require.NoError(t, err)

	_, err = s.Read()
	require.NoError(t, err)
	_, err = s.Read()
	require.ErrorIs(t, err, ErrStreamDone)

	_, err = c.Stream(JSONOptions())
	require.NoError(t, err)
}

func TestClientOverPipe(t *testing.T) {
	cli, srv := net.Pipe()
	defer srv.Close()

	go func() {
		srv.Write([]byte(banner))
		r := bufio.NewReader(srv)
		cmd, err := r.ReadString('\n')
		if err != nil {
			return
		}
		if cmd != "?WATCH={\"enable\":true,\"json\":true};\n" {
			srv.Close()
			return
		}
		srv.Write([]byte(devicesLine + watchOnEcho + tpvLine))
		srv.Close()
	}()

	c, err := Open(cli, nil)
	require.NoError(t, err)
	defer c.Close()

	s, err := c.Stream(JSONOptions())
	require.NoError(t, err)

	var classes []string
	for {
		rep, err := s.Read()
		if err != nil {
			break
		}
		classes = append(classes, rep.Class())
	}
	assert.Equal(t, []string{"DEVICES", "WATCH", "TPV"}, classes)
}
