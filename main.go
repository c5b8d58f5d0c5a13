package main

import "revue/cmd"

func main() {
	cmd.Execute()
}
