package main

import "github.com/quellen/nt/cmd"

func main() {
	cmd.Execute()
}
