// Command portfolioctl changes profile roles and seeds the project catalogue.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(openStores).Execute(); err != nil {
		os.Exit(1)
	}
}
