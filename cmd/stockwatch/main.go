package main

import "github.com/pujana-systems/stockwatch/internal/cli"

func main() {
	cli.Execute()
}
