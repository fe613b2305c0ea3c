// Package events publishes network lifecycle events on a watermill topic.
//
// A Bus turns the LifecycleHooks of a network into JSON messages so other
// goroutines or processes can follow mutations and evaluations without
// touching the network lock.
package events
