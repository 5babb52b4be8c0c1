package main

import "github.com/example/slotwatch/cmd"

func main() {
	cmd.Execute()
}
