package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	Execute()
}

// bail prints a message to stderr and exits non-zero. fatal is bail
// with a wrapped cause.
func bail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func fatal(msg string, err error) {
	bail(fmt.Sprintf("%s: %v", msg, err))
}
