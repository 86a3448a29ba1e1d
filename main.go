package main

import "github.com/klytics/santekit/cmd"

func main() {
	cmd.Execute()
}
