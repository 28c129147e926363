package main

import "github.com/dfxmlgo/dfxml/cmd/dfxml/cmd"

func main() {
	cmd.Execute()
}
