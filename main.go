package main

import "cern-sync/cmd"

func main() {
	cmd.Execute()
}
