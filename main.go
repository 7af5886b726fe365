package main

import "github.com/samuelfneumann/wormrl/cmd"

func main() {
	cmd.Execute()
}
