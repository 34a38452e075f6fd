package main

import (
	"fmt"
	"os"

	"dailybot/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "dailybot:", err)
		os.Exit(1)
	}
}
