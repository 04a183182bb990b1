package main

import "github.com/ConfabulousDev/chatstats/cmd"

func main() {
	cmd.Execute()
}
