package main

import "github.com/agpdl/agpdl/cmd"

var version = "0.3.0"

func main() {
	cmd.Execute(version)
}
