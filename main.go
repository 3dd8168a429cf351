package main

import "nervs/cmd"

func main() {
	cmd.Execute()
}
