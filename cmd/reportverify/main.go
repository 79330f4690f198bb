package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := New(version).Run(); err != nil {
		os.Exit(1)
	}
}
