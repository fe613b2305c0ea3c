/*
Package dsl provides a fluent builder for constructing portflow networks in Go.

It is an alternative to YAML or JSON definition files, useful for generated
networks and tests.

Example usage:

	b := dsl.New("pipeline")

	b.Add("src").
		Class("source").
		Meta("value", 7).
		To("out", "double/in")

	b.Add("double").
		Inport("in").
		Outport("out").
		To("out", "snk/in")

	b.Add("snk").Class("sink")

	def, err := b.Build()
	// ... pass def to portflow.New(...)
*/
package dsl
