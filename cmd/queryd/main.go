package main

import (
	"github.com/custodia-labs/queryd/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
