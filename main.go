package main

import "github.com/samuelfneumann/golocomotion/cmd"

func main() {
	cmd.Execute()
}
