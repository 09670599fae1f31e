package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcelsud/artemis-inbox/eventtypes"
)

/* validate-event-types - Standalone CLI tool to validate an event types file
 * Usage: go run cmd/validate-event-types/main.go [event-types.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	file := "event-types.yaml"
	if len(os.Args) > 1 {
		file = os.Args[1]
	}

	fmt.Printf("Validating event types file: %s\n", file)
	fmt.Println(strings.Repeat("-", 50))

	table := eventtypes.NewTable()
	if err := eventtypes.NewLoader(table).Load(file); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	known := table.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Known event types (%d, defaults included):\n", len(known))
	for _, et := range known {
		fmt.Printf("   %-12d %s\n", et.Code, et.Name)
	}

	os.Exit(0)
}
