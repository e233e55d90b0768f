package main

import "github.com/bradford-hamilton/gr8/cmd"

func main() {
	cmd.Execute()
}
