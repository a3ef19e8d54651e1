// Command operator-key prints the bcrypt hash to put in OPERATOR_KEY_HASH.
//
//	operator-key <key>
package main

import (
	"fmt"
	"os"

	"github.com/jakaprima/vending-machine/internal/middleware"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: operator-key <key>")
		os.Exit(2)
	}

	hash, err := middleware.HashOperatorKey(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "operator-key:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
