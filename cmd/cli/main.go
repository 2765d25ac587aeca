package main

import "anilog/cmd/cli/command"

func main() {
	command.Execute()
}
