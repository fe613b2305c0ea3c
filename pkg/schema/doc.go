// Package schema reads and writes network definitions.
//
// Definitions are plain YAML or JSON documents:
//
//	name: demo
//	processors:
//	  - id: reader
//	    class: source
//	    metadata:
//	      position: [0, 0]
//	  - id: view
//	    class: sink
//	connections:
//	  - from: reader/out
//	    to: view/in
//
// Processor metadata is free-form, but the well-known keys (position,
// selected, tags, value) are type-checked by CheckMetadata and decoded into
// a typed ProcessorMetadata by DecodeMetadata.
package schema
