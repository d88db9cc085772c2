// Package scene provides an in-memory a11y.Tree loaded from YAML window
// snapshots.
//
// A snapshot describes one desktop: a tree of objects rooted at a
// frame or dialog, the id of the focused object, and the monospace metrics
// used to lay out text. It is what the brlreview CLI reviews and what every
// flat review and presenter test is written against.
//
// # File Format
//
//	name: login dialog
//	focus: user
//	char_width: 10
//	line_height: 20
//	root:
//	  id: dialog
//	  role: dialog
//	  name: Log in
//	  rect: {x: 0, y: 0, width: 400, height: 200}
//	  children:
//	    - id: user-label
//	      role: label
//	      name: "User:"
//	      rect: {x: 10, y: 10, width: 50, height: 20}
//	      label_for: [user]
//	    - id: user
//	      role: entry
//	      states: [editable, single-line]
//	      text: jdoe
//	      caret: 4
//	      rect: {x: 70, y: 10, width: 200, height: 20}
//
// Object ids are strings in the file and are mapped to sequential
// a11y.ObjectID values in document order. Use Scene.ID to look them up.
//
// # Text Layout
//
// Text is laid out on a fixed grid anchored at the object's rect origin:
// character i of a line occupies char_width pixels, each line line_height
// pixels. Paragraphs are separated by "\n" and soft-wrapped at `wrap`
// columns when it is set. `scroll_y` shifts every line up by that many
// pixels, which is how partially visible text is described.
//
// Line strings returned by TextAt keep their trailing newline, matching
// what accessibility toolkits report.
package scene
