package main

import "vidmeta/cmd"

func main() {
	cmd.Execute()
}
