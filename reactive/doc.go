// Package reactive implements the typed publish/subscribe primitives the
// scene graph is built on: Publisher, Subscriber, Operator (both at once)
// and Pipeline, a scoped composition of a chain that tears itself down in
// reverse order.
//
// Chains are assembled with compose functions instead of an overloaded
// operator. The six role pairings are:
//
//	publisher -> operator    From(pub), then Via(pl, op)
//	publisher -> subscriber  Connect(pub, sub)
//	operator  -> operator    Via(pl, op) on a pipeline ending in an operator
//	operator  -> subscriber  pl.To(sub) on a pipeline ending in an operator
//	pipeline  -> operator    Via(pl, op)
//	pipeline  -> subscriber  pl.To(sub)
//
// Element types are carried by type parameters, so composing mismatched
// stages does not compile.
package reactive
