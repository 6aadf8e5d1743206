// Package parse parses yay documents into graph nodes.
//
// # Usage
//
//	// Parse a document
//	doc, err := parse.Parse(data, parse.WithSource("app.yay"))
//	if err != nil {
//	    return err
//	}
//	v, err := graph.NewDocument(doc).Resolve()
//
//	// Parse an expression
//	n, err := parse.ParseExpr(`a.b + 1`, nil)
//
// A document is YAML. Mapping keys starting with a directive keyword (if,
// elif, else, select, for, include, define, macro, call, extend) are
// directives, quoted keys are always data. Strings may interpolate
// expressions with {{ }}; plain values starting with {{ are quoted before
// the YAML parser sees them. Expressions use the expr-lang grammar.
//
// # Related Packages
//
//   - github.com/signadot/yay/graph - the node graph and its resolver
//   - github.com/signadot/yay/token - source positions
package parse
