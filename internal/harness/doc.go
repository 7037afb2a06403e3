// Package harness runs conformance scenarios against a query Processor.
//
// A scenario is a YAML file naming an input document and a list of steps.
// Each step runs one program on one result channel and checks the outcome:
//
//	name: users
//	description: project names from a list of users
//	input:
//	  users:
//	    - {name: Alice, age: 30}
//	    - {name: Bob, age: 25}
//	steps:
//	  - program: .users[].name
//	    expect:
//	      value: [Alice, Bob]
//	  - program: .users[0].age
//	    channel: typed
//	    expect:
//	      type: number
//	      check: result == 30
//	  - program: "."
//	    expect:
//	      error: EVALUATION_FAILURE
//
// Inline input keeps YAML mapping order, anchors and merge keys, and YAML
// number tags decide the number kind (2 is an int, 2.0 a float).
//
// # Channels
//
//   - text: canonical JSON text (the default)
//   - native: the unwrapped native value
//   - typed: the normalized dynamic value and its type
//
// # Expectations
//
// value compares structurally with the number kind kept (1 and 1.0 differ)
// and reports a JSON merge patch on mismatch. text compares the canonical
// JSON exactly. type compares the dynamic type string. error and
// error_contains match the execution error. check is an expr-lang boolean
// evaluated with result, text and type in scope.
//
// # Golden traces
//
// Every step is recorded in the result trace with a logical seq. The trace
// snapshot is canonical JSON and is compared to testdata/golden/<name>.golden
// by RunWithGolden, or to golden/<file>.golden next to the scenario by
// CompareGolden.
package harness
