// Package encode encodes resolved yay values as YAML or JSON text.
//
// # Usage
//
//	// Encode to YAML
//	err := encode.Encode(v, os.Stdout)
//
//	// Encode to colored JSON
//	err := encode.Encode(v, os.Stdout,
//	    encode.EncodeFormat(format.JSONFormat),
//	    encode.EncodeColors(encode.NewColors()))
//
// Colors are applied to the encoded text token by token, so Colorize
// works on any YAML or JSON text.
//
// # Related Packages
//
//   - github.com/signadot/yay/ir - resolved values
//   - github.com/signadot/yay/format - output formats
package encode
