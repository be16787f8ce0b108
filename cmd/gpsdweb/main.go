package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"nuha.dev/gpsdjson/internal/gpsd"
	"nuha.dev/gpsdjson/internal/sublist"
	"nuha.dev/gpsdjson/internal/webstream"
)

type config struct {
	ListenAddr string `mapstructure:"listen_addr" validate:"required,hostname_port"`
	GpsdAddr   string `mapstructure:"gpsd_addr" validate:"required,hostname_port"`
}

type envelope struct {
	Class  string      `json:"class"`
	Report gpsd.Report `json:"report"`
}

func main() {
	viper.SetDefault("listen_addr", ":3333")
	viper.SetDefault("gpsd_addr", "localhost:2947")
	viper.SetEnvPrefix("gpsdweb")
	viper.AutomaticEnv()

	cfg := config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		panic(err.Error())
	}
	if err := validator.New().Struct(cfg); err != nil {
		panic(err.Error())
	}
	logger := log.With().Str("module", "gpsdweb").Logger()

	sl := sublist.New()
	go pump(cfg.GpsdAddr, sl)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/stream", webstream.NewHandler(sl, logger).ServeHTTP)

	s1 := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	err := s1.ListenAndServe()
	if err != nil {
		panic(err.Error())
	}
}

// pump keeps one watch open against the daemon and fans decoded reports
// out to websocket subscribers, reconnecting on failure.
func pump(addr string, sl *sublist.Sublist) {
	logger := log.With().Str("module", "pump").Logger()
	for {
		c, err := gpsd.Dial(addr, nil)
		if err != nil {
			logger.Err(err).Str("address", addr).Msg("connect failed, retrying")
			time.Sleep(5 * time.Second)
			continue
		}
		s, err := c.Stream(gpsd.JSONOptions().Scaled(true))
		if err != nil {
			logger.Err(err).Msg("watch failed, retrying")
			c.Close()
			time.Sleep(5 * time.Second)
			continue
		}
		for {
			rep, err := s.Read()
			if err != nil {
				var de *gpsd.DecodeError
				if errors.As(err, &de) {
					logger.Warn().Str("class", de.Class).Err(de.Cause).Msg("undecodable report")
					continue
				}
				logger.Err(err).Msg("stream ended, reconnecting")
				break
			}
			data, err := json.Marshal(envelope{Class: rep.Class(), Report: rep})
			if err != nil {
				continue
			}
			sl.Send(rep.Class(), data)
		}
		c.Close()
		time.Sleep(5 * time.Second)
	}
}
