// Package query runs query programs over native values.
//
// A Processor encodes its input with the native codec, hands the canonical
// text to an Evaluator, decodes every emitted document and applies the unwrap
// policy: exactly one result is returned as-is, anything else (including no
// results) becomes a list. The result is delivered on one of three channels:
// native (Execute), canonical text (ExecuteText) or typed (ExecuteDynamic).
//
// Every failure is an *ExecutionError whose Kind says whether the input, the
// program or the evaluation was at fault. Nothing is retried.
//
// Evaluators are looked up in an explicit table; DefaultEvaluators provides
// jq (gojq) and JSONPath (RFC 9535).
package query
