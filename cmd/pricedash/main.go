package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
)

func main() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("load .env")
	}
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
