// Package dynamic implements the strictly-typed value model used by the typed
// result channel.
//
// Every Value carries a Type (Dynamic, Null, Bool, Number, String, List or
// Object) consistent with its contents. FromNative derives the type of a
// native value structurally; ToNative goes back. Conform checks a native
// value against a declared type, which is how component parameters and
// data source attributes are validated.
package dynamic
