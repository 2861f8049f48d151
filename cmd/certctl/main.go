// Command certctl runs operator tasks against the certificate store:
// first-run admin bootstrap, index setup, and offline verification and QR
// rendering.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
