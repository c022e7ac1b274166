package main

import (
	"github.com/Laisky/smart-email-finder/cmd"
)

func main() {
	cmd.Execute()
}
