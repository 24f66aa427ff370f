package main

import "github.com/andrescamacho/spacestation-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
