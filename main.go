package main

import (
	"os"

	"github.com/maastricht-university/turn-features/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
