package main

import "comicarr/cmd"

func main() {
	cmd.Execute()
}
