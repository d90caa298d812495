package main

import "github.com/nervio/neuromap/cmd"

func main() {
	cmd.Execute()
}
