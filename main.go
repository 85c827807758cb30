package main

import "github.com/nmartinez/oddsedge/cmd"

func main() {
	cmd.Execute()
}
