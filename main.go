package main

import "github.com/roadlab/stats19/cmd"

func main() {
	cmd.Execute()
}
