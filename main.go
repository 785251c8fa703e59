package main

import "github.com/projectmoil/gateway/cmd"

func main() {
	cmd.Execute()
}
