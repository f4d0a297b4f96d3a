package main

import "github.com/harry-hov/abi-aggregator/cmd"

func main() {
	cmd.Execute()
}
