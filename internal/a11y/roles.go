package a11y

import (
	"fmt"
	"strings"
)

// Role is the accessible role of an object.
type Role int

const (
	RoleUnknown Role = iota
	RoleAlert
	RoleCanvas
	RoleCheckBox
	RoleCheckMenuItem
	RoleComboBox
	RoleDialog
	RoleDocument
	RoleEntry
	RoleFiller
	RoleFrame
	RoleHeading
	RoleIcon
	RoleImage
	RoleLabel
	RoleLink
	RoleList
	RoleListBox
	RoleListItem
	RoleMenu
	RoleMenuBar
	RoleMenuItem
	RolePageTab
	RolePageTabList
	RolePanel
	RoleParagraph
	RolePasswordText
	RoleProgressBar
	RolePushButton
	RoleRadioButton
	RoleRadioMenuItem
	RoleScrollBar
	RoleScrollPane
	RoleSeparator
	RoleSlider
	RoleSpinButton
	RoleStatusBar
	RoleTable
	RoleTableCell
	RoleTableRow
	RoleText
	RoleToggleButton
	RoleToolBar
	RoleTree
	RoleTreeItem
	RoleViewport
	RoleWindow
)

var roleNames = map[Role]string{
	RoleUnknown:       "unknown",
	RoleAlert:         "alert",
	RoleCanvas:        "canvas",
	RoleCheckBox:      "check box",
	RoleCheckMenuItem: "check menu item",
	RoleComboBox:      "combo box",
	RoleDialog:        "dialog",
	RoleDocument:      "document",
	RoleEntry:         "entry",
	RoleFiller:        "filler",
	RoleFrame:         "frame",
	RoleHeading:       "heading",
	RoleIcon:          "icon",
	RoleImage:         "image",
	RoleLabel:         "label",
	RoleLink:          "link",
	RoleList:          "list",
	RoleListBox:       "list box",
	RoleListItem:      "list item",
	RoleMenu:          "menu",
	RoleMenuBar:       "menu bar",
	RoleMenuItem:      "menu item",
	RolePageTab:       "page tab",
	RolePageTabList:   "page tab list",
	RolePanel:         "panel",
	RoleParagraph:     "paragraph",
	RolePasswordText:  "password text",
	RoleProgressBar:   "progress bar",
	RolePushButton:    "push button",
	RoleRadioButton:   "radio button",
	RoleRadioMenuItem: "radio menu item",
	RoleScrollBar:     "scroll bar",
	RoleScrollPane:    "scroll pane",
	RoleSeparator:     "separator",
	RoleSlider:        "slider",
	RoleSpinButton:    "spin button",
	RoleStatusBar:     "status bar",
	RoleTable:         "table",
	RoleTableCell:     "table cell",
	RoleTableRow:      "table row",
	RoleText:          "text",
	RoleToggleButton:  "toggle button",
	RoleToolBar:       "tool bar",
	RoleTree:          "tree",
	RoleTreeItem:      "tree item",
	RoleViewport:      "viewport",
	RoleWindow:        "window",
}

// String returns the human-readable role name (e.g. "push button").
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole converts a role name to a Role. Spaces, dashes and underscores
// are interchangeable and matching is case-insensitive.
func ParseRole(name string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	for role, roleName := range roleNames {
		if roleName == normalized {
			return role, nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", name)
}

// IsTopLevel reports whether objects with this role can be the root of a
// flat review session.
func (r Role) IsTopLevel() bool {
	switch r {
	case RoleFrame, RoleWindow, RoleDialog, RoleAlert:
		return true
	}
	return false
}

// IsDialog reports whether the role is a dialog-like window.
func (r Role) IsDialog() bool {
	return r == RoleDialog || r == RoleAlert
}

// IsMenu reports whether the role is a menu container.
func (r Role) IsMenu() bool {
	return r == RoleMenu
}

// IsRow reports whether the role is a row-type container whose cells carry
// the presentable content.
func (r Role) IsRow() bool {
	return r == RoleTableRow
}

// IsScrollable reports whether the role clips its descendants to its own
// extents.
func (r Role) IsScrollable() bool {
	return r == RoleScrollPane || r == RoleViewport
}
