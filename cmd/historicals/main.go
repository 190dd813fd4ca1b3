package main

import (
	"os"

	"company_historicals/cmd/historicals/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
