package main

import "github.com/wedflix/command-center/cmd"

func main() {
	cmd.Execute()
}
