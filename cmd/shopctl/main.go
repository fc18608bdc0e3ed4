// shopctl is the operator CLI: schema migration, fixture seeding and
// stock inspection against the same database the API uses.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load() // Load .env file if it exists
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := NewRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("shopctl failed")
		os.Exit(1)
	}
}
