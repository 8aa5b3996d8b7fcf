package main

import "s1-forestry/cmd"

func main() {
	cmd.Execute()
}
