package main

import "github.com/systemshift/leaky/cmd/leaky/cmd"

func main() {
	cmd.Execute()
}
