package main

import (
	"log"

	"github.com/sergeyk-dev/authgate/internal/client/cli"
	"github.com/sergeyk-dev/authgate/internal/client/config"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	cli.NewApp(cfg).Run()
}
