package main

import "github.com/ovall/dentavia_backend/cmd"

func main() {
	cmd.Execute()
}
