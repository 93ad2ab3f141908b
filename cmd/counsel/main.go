// Command counsel answers questions over your own legal documents.
package main

import (
	"os"

	"github.com/veritas-labs/counsel/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
