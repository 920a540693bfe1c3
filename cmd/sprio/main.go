package main

import (
	"github.com/mchmarny/sprio/pkg/cli"
)

func main() {
	cli.Execute()
}
