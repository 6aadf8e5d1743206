// Package ir provides the resolved value tree of a yay document.
//
// Resolving a document graph produces an *ir.Node. The tree is plain data:
// null, booleans, numbers, strings, arrays and objects. Objects keep their
// fields sorted by key so that resolution is deterministic and two resolved
// trees can be compared or diffed directly.
//
// # Node Types
//
//   - NullType: null value
//   - BoolType: boolean (true/false)
//   - NumberType: numeric value, exactly one of Int64 or Float64 is set
//   - StringType: string value
//   - ArrayType: ordered list of nodes in Values
//   - ObjectType: Fields[i] is the key of Values[i]
//
// The tree carries no position information. Conversion to and from the
// generic Go representation used by encoding/json is provided by ToAny and
// FromAny.
package ir
