package main

import "chatterdash/cmd"

func main() {
	cmd.Execute()
}
