package main

import "github.com/docsmith/docsmith/cmd"

func main() {
	cmd.Execute()
}
