// Package dnd resolves drag-and-drop targets from pointer geometry.
//
// Resolution is a pure function of the document, the rendered rectangles
// supplied by a LayoutProvider and the pointer offset. For every pointer
// move the caller builds a DragAreaBuilderData, classifies the pointer
// against the target rectangle and gets back an Indicator describing the
// drop intent, the insertion path and the geometry to paint. Nothing is
// retained between calls; abandoning a drag needs no cleanup.
//
// Classification splits the target rectangle into thirds vertically
// (top, middle, bottom) and into left, center and right bands
// horizontally, using the fractions in Config:
//
//	middle + left  -> leading   (append inside the target's first child)
//	right          -> trailing  (sibling after the target, side bar)
//	center         -> inside    (append as the target's last child)
//	top / bottom   -> before / after the target
//
// Targets whose type is listed in Config.NonNestable only ever resolve to
// before or after.
package dnd
