package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		FatalError("encoding JSON: %v", err)
	}
}

// printOut is fmt.Printf to stdout; kept as a helper so human output and
// JSON output stay visibly separated in command code.
func printOut(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}
