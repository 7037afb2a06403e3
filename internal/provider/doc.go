// Package provider exposes query processing as named components: functions
// that take positional arguments and data sources that turn a configuration
// object into a state object.
//
// Components live in an explicit Registry. Arguments and configuration are
// checked against declared dynamic types before a component runs, so
// implementations receive typed values that already match their schema.
package provider
