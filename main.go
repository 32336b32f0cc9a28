package main

import "github.com/orbs-network/pos-analytics/cmd"

func main() {
	cmd.Execute()
}
