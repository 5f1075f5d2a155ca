package main

import "api-test-engine/cmd"

func main() {
	cmd.Execute()
}
