package main

import (
	"os"

	"github.com/FranksOps/newshound/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
