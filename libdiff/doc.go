// Package libdiff compares resolved yay values.
//
// # Usage
//
//	// Paths which differ
//	for _, c := range libdiff.Diff(before, after) {
//	    fmt.Println(c)
//	}
//
//	// Line diff of the encoded values
//	fmt.Print(libdiff.Text(beforeText, afterText))
//
//	// RFC 7386 merge patch, and applying it
//	p, err := libdiff.MergePatch(before, after)
//	res, err := libdiff.Apply(before, p)
//
// Apply also accepts RFC 6902 JSON patches, which are arrays of
// operations.
//
// # Related Packages
//
//   - github.com/signadot/yay/ir - resolved values
//   - github.com/signadot/yay/encode - encoding values as text
package libdiff
