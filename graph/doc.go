// Package graph owns everything process-wide about the scene graph: the
// node registry (UUID to handle, name to UUID), the dirty set consumed by
// synchronization, the freeze protocol between the UI and render threads,
// and the root node.
//
// The canonical protocol is: the UI thread mutates nodes and properties;
// the render thread brackets each frame with Freeze and Unfreeze and reads
// base values only; the UI thread calls Synchronize between frames to
// promote modified copies and learn which root-visible subtrees changed.
package graph
