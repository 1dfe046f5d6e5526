package main

import "github.com/podly-fm/podly/internal/cli"

func main() {
	cli.Execute()
}
