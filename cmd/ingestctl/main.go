// Command ingestctl triggers and inspects ingestion runs from the shell,
// using the same configuration and wiring as the server.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
