package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/sandeepkv93/twodo/internal/cli"
)

var version = "dev"

func main() {
	// a .env next to the binary may carry TWODO_* settings
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "twodo: load .env: %v\n", err)
	}
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
