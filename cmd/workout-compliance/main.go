package main

import (
	"github.com/lucasjlepore/workout-compliance/internal/cli"
)

func main() {
	cli.Execute()
}
