// Package pipeline wires the document, resolve, catalog, and emit packages
// into a single runnable unit behind one Config, the way the reference CLI
// this project is modeled on ties its own schema generation together.
//
// Create a [Config] with [NewConfig], register its flags with
// [Config.RegisterFlags], then build a [Pipeline] with [Config.NewPipeline]
// and run it with [Pipeline.Run].
package pipeline
