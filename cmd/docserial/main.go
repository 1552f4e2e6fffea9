// Command docserial is the operator CLI: schema migrations, prefix registry
// maintenance, one-off allocations and admin tokens.
package main

import (
	"fmt"
	"os"
)

func main() {
	a := &app{}
	if err := a.execute(newRootCmd(a)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
