package main

import (
	"log"

	"github.com/ephemera/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("ephemera: %v", err)
	}
}
