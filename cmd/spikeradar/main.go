package main

import "spikeradar/internal/cli"

func main() {
	cli.Execute()
}
