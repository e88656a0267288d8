package main

import "github.com/diogo/nlq/internal/commands"

func main() {
	commands.Execute()
}
