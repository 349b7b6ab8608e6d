// Package check defines the value types shared by the diagnostic rules and the
// report aggregator: severities, reports, the environment context and the rule
// contract itself.
//
// The types live in their own package so that rule implementations, YAML rule
// files and the aggregator in package logdoctor can all depend on them without
// import cycles.
package check
