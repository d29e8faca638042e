// inspect-identity-map prints per-kind entry counts from a persisted
// identity map document, for operator review between passes.
//
// Usage: go run ./scripts/inspect-identity-map [-v] <identity-map.json>
//
// Flags:
//
//	-v  Also list every legacy-ID -> surrogate mapping
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
)

func main() {
	verbose := flag.Bool("v", false, "List every mapping, not just counts")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-v] <identity-map.json>\n", os.Args[0])
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read identity map: %v\n", err)
		os.Exit(1)
	}

	var kinds map[string]map[string]string
	if err := json.Unmarshal(data, &kinds); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse identity map: %v\n", err)
		os.Exit(1)
	}

	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		entries := kinds[name]
		fmt.Printf("%-15s %d\n", name, len(entries))
		total += len(entries)

		if *verbose {
			ids := make([]string, 0, len(entries))
			for id := range entries {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Printf("  %s -> %s\n", id, entries[id])
			}
		}
	}
	fmt.Printf("%-15s %d\n", "total", total)
}
