// Package util contains small generic helpers shared across oreoc's
// compiler packages.
package util

import "strings"

// MakeTextList gives a nice list of things, oxford-comma'd if there are more
// than two.
func MakeTextList(items []string) string {
	if len(items) < 1 {
		return ""
	}

	output := ""

	if len(items) == 1 {
		output += items[0]
	} else if len(items) == 2 {
		output += items[0] + " and " + items[1]
	} else {
		items[len(items)-1] = "and " + items[len(items)-1]
		output += strings.Join(items, ", ")
	}

	return output
}
