package main

import (
	cmd "github.com/rohmanhakim/web-scraper/internal/cli"
)

func main() {
	cmd.Execute()
}
