package main

import (
	"os"

	"github.com/iexplain/iexplain/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
