package main

import "github.com/zyla/purr/cmd"

var version = "v0.1.0"

func main() {
	cmd.Execute(version)
}
