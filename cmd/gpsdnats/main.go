package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"nuha.dev/gpsdjson/internal/gpsd"
)

// Bridges a gpsd watch onto NATS subjects. Each report is published to
// gpsd.<class> (lowercased) as its JSON encoding.
func main() {
	viper.SetDefault("nats_url", nats.DefaultURL)
	viper.SetDefault("gpsd_addr", "localhost:2947")
	viper.SetEnvPrefix("gpsdnats")
	viper.AutomaticEnv()

	logger := log.With().Str("module", "gpsdnats").Logger()

	nc, err := nats.Connect(viper.GetString("nats_url"), nats.RetryOnFailedConnect(true))
	if err != nil {
		logger.Fatal().Err(err).Msg("nats connect failed")
	}
	defer nc.Close()

	c, err := gpsd.Dial(viper.GetString("gpsd_addr"), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("gpsd connect failed")
	}
	defer c.Close()

	s, err := c.AsyncStream(gpsd.JSONOptions().Scaled(true))
	if err != nil {
		logger.Fatal().Err(err).Msg("watch failed")
	}
	defer s.Close()

	ctx := context.Background()
	for {
		rep, err := s.Recv(ctx)
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
		data, err := json.Marshal(rep)
		if err != nil {
			continue
		}
		subject := "gpsd." + strings.ToLower(rep.Class())
		if err := nc.Publish(subject, data); err != nil {
			logger.Err(err).Str("subject", subject).Msg("publish failed")
			time.Sleep(time.Second)
		}
	}
}
