package main

import "github.com/brocaar/digico-report/cmd/digico-report/cmd"

var version string // set by the compiler

func main() {
	cmd.Execute(version)
}
