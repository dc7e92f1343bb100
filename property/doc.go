// Package property implements the typed observable cell that node state
// lives in. A property owns a base value, an optional modified copy that
// absorbs UI-thread writes while the graph is frozen, a seeded 64-bit hash
// of the effective value, an optional validation callback, and a
// downstream publisher that emits every accepted update.
//
// A property is also the property operator: it subscribes to a T stream
// (OnNext delegates to Set) and publishes T downstream, so it composes
// into reactive pipelines on either end.
package property
