package main

import "github.com/fakeyudi/relapse/cmd"

func main() {
	cmd.Execute()
}
