package main

import (
	"os"

	"github.com/gatehouse-dev/gatehouse/cmd/gatehousectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
