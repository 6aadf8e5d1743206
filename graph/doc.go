// Package graph implements lazy resolution of yay documents.
//
// A document is a graph of [Node]s. Parent links give lexical scope: an
// identifier is looked up in the enclosing [Context] frames and finally
// among the top level keys of the document. Predecessor links give
// overlays: each definition of a key sits on top of the earlier
// definition it replaces or extends, so that
//
//	foo:
//	  a: 1
//	foo:
//	  b: 2
//
// resolves foo to {a: 1, b: 2}.
//
// Nothing is evaluated until it is asked for. Directives (If, Select,
// For, Include, Define and CallMacro) decide which node answers a lookup
// at resolution time. A directive whose decision depends on the very
// keys it defines is resolved by first deciding with the directive
// transparent, then checking the decision still holds with the directive
// in effect; when it does not, resolution fails with [ErrParadox].
//
// All evaluation goes through a [Resolver], which holds the state of one
// resolution pass. [Document] is the usual entry point.
package graph
