// Package format names the output formats of yay values.
//
// # Usage
//
//	f, err := format.ParseFormat("json")
//	err = encode.Encode(v, os.Stdout, encode.EncodeFormat(f))
//
// # Related Packages
//
//   - github.com/signadot/yay/encode - Encode values to text
package format
