package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nuha.dev/gpsdjson/internal/gpsd"
)

func main() {
	debug := flag.Bool("debug", false, "sets log level to debug")
	addr := flag.String("address", "localhost:2947", "gpsd address to connect to")
	mode := flag.String("mode", "json", "stream mode: json, nmea or raw")
	device := flag.String("device", "", "restrict to one device path")
	flag.Parse()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	logger := log.With().Str("module", "gpsdcli").Logger()

	c, err := gpsd.Dial(*addr, nil)
	if err != nil {
		logger.Fatal().Err(err).Str("address", *addr).Msg("connect failed")
	}
	v := c.ServerVersion()
	logger.Info().Str("release", v.Release).Int("proto_major", v.ProtoMajor).
		Int("proto_minor", v.ProtoMinor).Msg("connected")

	var opts gpsd.StreamOptions
	switch *mode {
	case "nmea":
		opts = gpsd.NMEAOptions()
	case "raw":
		opts = gpsd.RawOptions().HexDump(true)
	default:
		opts = gpsd.JSONOptions().Scaled(true)
	}
	if *device != "" {
		opts = opts.Device(*device)
	}

	s, err := c.Stream(opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("watch failed")
	}

	// Abort is the only stream call safe from another goroutine while
	// the main loop is blocked in Read
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt)
	go func() {
		<-sigch
		s.Abort()
		os.Exit(0)
	}()

	for {
		rep, err := s.Read()
		if err != nil {
			var de *gpsd.DecodeError
			if errors.As(err, &de) {
				logger.Warn().Str("class", de.Class).Err(de.Cause).Msg("undecodable report")
				continue
			}
			if errors.Is(err, gpsd.ErrStreamDone) {
				logger.Info().Msg("stream ended")
				return
			}
			logger.Fatal().Err(err).Msg("stream failed")
		}
		switch r := rep.(type) {
		case gpsd.TPV:
			ev := logger.Info().Str("mode", r.Mode.String())
			if r.Lat != nil && r.Lon != nil {
				ev = ev.Float64("lat", *r.Lat).Float64("lon", *r.Lon)
			}
			if r.Speed != nil {
				ev = ev.Float64("speed", *r.Speed)
			}
			ev.Msg("fix")
		case gpsd.SKY:
			ev := logger.Info().Int("satellites", len(r.Satellites))
			if r.USat != nil {
				ev = ev.Int("used", *r.USat)
			}
			ev.Msg("sky view")
		case gpsd.NMEA:
			os.Stdout.WriteString(r.Sentence + "\n")
		case gpsd.RawData:
			logger.Info().Int("bytes", len(r.Data)).Msg("raw data")
		default:
			logger.Debug().Str("class", rep.Class()).Msg("report")
		}
	}
}
