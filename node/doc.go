// Package node implements the scene graph's tree element: a polymorphic
// node with a UUID, a graph-unique name, a set of observable properties
// and an ordered child list (insertion order is render order).
//
// Concrete node types embed Base and call Init with the outer value from
// their constructor. RunTime is the ready-made node with a dynamic
// property schema; typed node kinds declare their properties in their own
// constructors. Parents own their children exclusively; everything outside
// the tree refers to nodes through weak, UUID-addressed handles.
package node
