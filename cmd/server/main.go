package main

import (
	"github.com/JBibu/zerobyte/pkg/server"
	"github.com/rs/zerolog/log"
)

func main() {
	srv, err := server.NewServer()
	if err != nil {
		log.Fatal().Err(err).Msg("error creating volume service")
	}

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("volume service exited with error")
	}
	log.Info().Msg("volume service stopped")
}
