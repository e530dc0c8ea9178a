package main

import "chathub/cmd/cli/command"

func main() {
	command.Execute()
}
