// Package a11y defines the contract between brlreview and the accessibility
// tree of the desktop being reviewed.
//
// The tree itself is an external collaborator. Everything brlreview needs
// from it is expressed as small query interfaces (Structure, Component, Text,
// ValueQuery, Action) that are combined into Tree. Implementations must be
// side-effect free for queries and must return zero sentinels (empty string,
// zero Rect, -1 offsets, nil slices) instead of failing on objects that do not
// support a capability.
//
// # Objects
//
// Accessible objects are referred to by ObjectID. An ObjectID is an opaque,
// comparable handle; None (0) means "no object". Handles are never owned by
// brlreview: the tree outlives every flat review session built on top of it.
//
// # Geometry
//
// All rectangles are in screen coordinates. Visible and Clip implement the
// overlap rules used throughout flat review:
//
//	if a11y.Visible(lineRect, clip) {
//	    zoneRect := a11y.Clip(lineRect, clip)
//	    ...
//	}
//
// The in-memory implementation used by the CLI and the tests lives in the
// scene subpackage.
package a11y
