package main

import (
	"os"

	"pantrypal/server"
)

func main() {
	os.Exit(server.Run())
}
