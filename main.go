package main

import "matagent-cli/cmd"

func main() {
	cmd.Execute()
}
