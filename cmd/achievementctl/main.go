package main

import "learnhub_backend/internal/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
