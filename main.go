package main

import "github.com/Tiliavir/tempoit/cmd"

func main() {
	cmd.Execute()
}
