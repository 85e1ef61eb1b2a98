package main

import "github.com/dotcommander/pyright-action/cmd"

func main() {
	cmd.Execute()
}
