package main

import (
	"os"

	"chatd/internal/chatctl"
)

func main() {
	if err := chatctl.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
