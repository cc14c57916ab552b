// Command tracker serves the project tracker GraphQL API and offers
// operator commands for migrations, organizations, stats and tokens.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
