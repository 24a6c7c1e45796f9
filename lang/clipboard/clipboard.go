// Package clipboard wraps the external clipboard collaborator spec.md §1
// names as out of scope for the transpiler itself: the "--copy" flag's
// destination.
package clipboard

import "github.com/atotto/clipboard"

// Write copies text (the base64-encoded schematic payload Mindustry's
// in-game paste action expects) to the system clipboard.
func Write(text string) error {
	return clipboard.WriteAll(text)
}
