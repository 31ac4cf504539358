package main

import (
	"fmt"
	"os"
)

func main() {
	a := newApp(os.Stdout)
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
