// Package flatreview models the contents of a window as a grid of lines for
// review by speech and braille.
//
// A Context collects the on-screen objects of a window into zones, clusters
// the zones into lines by their vertical position and keeps a
// (line, zone, word, char) cursor over them. Navigation methods move the
// cursor and report whether it moved. BrailleRegions projects the current
// line into braille regions, and Finder searches the lines with regular
// expressions.
package flatreview
