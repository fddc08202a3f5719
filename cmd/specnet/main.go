// specnet - Spectral similarity network toolkit
package main

import (
	"fmt"
	"os"

	"github.com/sdewaal/specnet/cmd/specnet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
