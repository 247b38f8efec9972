// Command folio runs the portfolio server and its maintenance helpers.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/eringen/folio"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "init":
		path := ".env"
		if len(os.Args) > 2 {
			path = os.Args[2]
		}
		if err := runInit(path, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "hash-password":
		if err := runHashPassword(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("folio %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func runServe() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := configFromEnv(os.Getenv)
	if err != nil {
		return err
	}
	app := folio.New(cfg)
	return app.Start()
}

// runHashPassword reads a password from the first line of r and writes its
// bcrypt hash to w.
func runHashPassword(r io.Reader, w io.Writer) error {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	hash, err := folio.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hash)
	return err
}

func printUsage() {
	fmt.Println(`folio - A portfolio site with a blog, a photo gallery and an admin panel

Usage:
  folio [command] [arguments]

Commands:
  serve           Start the web server (default)
  init [path]     Write a starter .env with a fresh session secret
  hash-password   Read a password from stdin and print its bcrypt hash
  version         Print the folio version
  help            Show this help message

Examples:
  folio init
  echo -n 's3cret' | folio hash-password
  API_URL=https://api.example.com folio serve`)
}
