package main

import "github.com/wikimirror/wikimirror/cmd"

func main() {
	cmd.Execute()
}
