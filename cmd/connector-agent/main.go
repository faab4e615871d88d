package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}
