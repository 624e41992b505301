package main

import "zenflow/internal/cli"

func main() {
	cli.Execute()
}
