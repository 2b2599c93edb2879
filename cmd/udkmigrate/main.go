// Command udkmigrate exports legacy UDK assets and scene manifests.
package main

import (
	"os"

	"udk-migrate/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
