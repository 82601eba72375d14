package main

import (
	"log"

	"surveyquiz/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
