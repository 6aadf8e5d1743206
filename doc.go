// Package yay loads and resolves yay configurations.
//
// yay is YAML with lazily evaluated {{ }} expressions, conditionals,
// loops, includes and macros. A Config stacks documents: each one loaded
// overlays the ones before it, and every expression sees the final
// stacked result.
//
//	c := yay.New(yay.WithVars(map[string]any{"env": "prod"}))
//	if err := c.LoadAll("base.yay", "prod.yay"); err != nil {
//	    return err
//	}
//	v, err := c.Get("server.port")
//
// Includes and LoadURI read documents through an opener.Opener, by
// default the OS filesystem and http(s).
//
// # Related Packages
//
//   - github.com/signadot/yay/graph - node graph and resolution
//   - github.com/signadot/yay/parse - document syntax
//   - github.com/signadot/yay/opener - document loading
//   - github.com/signadot/yay/encode - output
package yay
