package flatreview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muurk/brlreview/internal/a11y"
)

// objectReplacement stands in for embedded objects in text.
const objectReplacement = '\uFFFC'

// maxDescendantDepth bounds the active descendant chain followed for one
// object.
const maxDescendantDepth = 8

// buildZones fills the zone arena from the on-screen descendants of the
// container.
func (c *Context) buildZones() {
	clip := c.tree.Rect(c.container)
	if clip.IsZero() {
		clip = c.tree.Rect(c.root)
	}

	objects := c.tree.OnScreenDescendants(c.container, clip)
	onScreen := make(map[a11y.ObjectID]bool, len(objects))
	for _, obj := range objects {
		onScreen[obj] = true
	}

	for _, obj := range objects {
		if c.labelsOnScreen(obj, onScreen) {
			continue
		}
		for _, z := range c.zonesFor(obj, clip, 0) {
			zi := len(c.zones)
			c.zones = append(c.zones, z)
			c.byObject[z.Object] = append(c.byObject[z.Object], zi)
		}
	}
}

// labelsOnScreen reports whether obj labels another on-screen object, whose
// own zones present the label text.
func (c *Context) labelsOnScreen(obj a11y.ObjectID, onScreen map[a11y.ObjectID]bool) bool {
	for _, target := range c.tree.LabelFor(obj) {
		if target != obj && onScreen[target] {
			return true
		}
	}
	return false
}

// zonesFor returns the zones of one object.
func (c *Context) zonesFor(obj a11y.ObjectID, clip a11y.Rect, depth int) []Zone {
	var zones []Zone
	if text := c.textZones(obj, clip); len(text) > 0 {
		zones = text
	} else if z, ok := c.valueZone(obj, clip); ok {
		zones = []Zone{z}
	} else if z, ok := c.nameZone(obj, clip); ok {
		zones = []Zone{z}
	}

	if len(zones) == 0 {
		active := c.tree.ActiveDescendant(obj)
		if active != a11y.None && active != obj && depth < maxDescendantDepth {
			return c.zonesFor(active, clip, depth+1)
		}
		return nil
	}

	if indicator := stateIndicator(c.tree.Role(obj), c.tree.States(obj)); indicator != "" {
		state := Zone{
			Kind:   StateZone,
			Object: obj,
			Text:   indicator,
			Rect:   a11y.Clip(c.tree.Rect(obj), clip),
			Length: len([]rune(indicator)),
		}
		zones = append([]Zone{state}, zones...)
	}
	return zones
}

// textClip returns clip tightened to a scrolling ancestor of obj when that
// ancestor lies inside it.
func (c *Context) textClip(obj a11y.ObjectID, clip a11y.Rect) a11y.Rect {
	scroller := a11y.FindAncestor(c.tree, obj, func(o a11y.ObjectID) bool {
		return c.tree.Role(o).IsScrollable()
	})
	if scroller == a11y.None {
		return clip
	}
	if r := c.tree.Rect(scroller); !r.IsZero() && clip.Contains(r) {
		return r
	}
	return clip
}

func (c *Context) textZones(obj a11y.ObjectID, clip a11y.Rect) []Zone {
	if !c.tree.SupportsText(obj) {
		return nil
	}
	count := c.tree.CharacterCount(obj)
	if count <= 0 {
		return nil
	}

	states := c.tree.States(obj)
	if states.Has(a11y.StateEditable) && states.Has(a11y.StateSingleLine) {
		text := strings.TrimSuffix(c.tree.Text(obj, 0, -1), "\n")
		if text == "" {
			return nil
		}
		rect := c.tree.RangeRect(obj, 0, count)
		if rect.IsZero() {
			rect = c.tree.Rect(obj)
		}
		return []Zone{{
			Kind:   TextZone,
			Object: obj,
			Text:   text,
			Rect:   rect,
			Length: len([]rune(text)),
		}}
	}

	clip = c.textClip(obj, clip)
	var zones []Zone
	for offset := 0; offset < count; {
		line, start, end := c.tree.TextAt(obj, offset, a11y.GranularityLine)
		if end <= start || end <= offset {
			break
		}
		offset = end

		rect := c.tree.RangeRect(obj, start, end)
		if !a11y.Visible(rect, clip) {
			continue
		}
		zones = append(zones, c.runZones(obj, strings.TrimSuffix(line, "\n"), start, clip)...)
	}
	return zones
}

// runZones splits one displayed line at embedded object characters.
func (c *Context) runZones(obj a11y.ObjectID, line string, start int, clip a11y.Rect) []Zone {
	var zones []Zone
	runes := []rune(line)
	for i := 0; i < len(runes); {
		if runes[i] == objectReplacement {
			i++
			continue
		}
		j := i
		for j < len(runes) && runes[j] != objectReplacement {
			j++
		}
		rect := c.tree.RangeRect(obj, start+i, start+j)
		if a11y.Visible(rect, clip) {
			zones = append(zones, Zone{
				Kind:        TextZone,
				Object:      obj,
				Text:        string(runes[i:j]),
				Rect:        a11y.Clip(rect, clip),
				StartOffset: start + i,
				Length:      j - i,
			})
		}
		i = j
	}
	return zones
}

func (c *Context) valueZone(obj a11y.ObjectID, clip a11y.Rect) (Zone, bool) {
	if !c.tree.SupportsValue(obj) {
		return Zone{}, false
	}
	role := c.tree.Role(obj)
	text := fmt.Sprintf("%s %s", role, formatValue(role, c.tree.Value(obj)))
	return Zone{
		Kind:   ValueZone,
		Object: obj,
		Text:   text,
		Rect:   a11y.Clip(c.tree.Rect(obj), clip),
		Length: len([]rune(text)),
	}, true
}

func formatValue(role a11y.Role, v a11y.Value) string {
	if v.Text != "" {
		return v.Text
	}
	if role == a11y.RoleProgressBar && v.Max > v.Min {
		return fmt.Sprintf("%.0f%%", (v.Current-v.Min)/(v.Max-v.Min)*100)
	}
	return strconv.FormatFloat(v.Current, 'f', -1, 64)
}

func (c *Context) nameZone(obj a11y.ObjectID, clip a11y.Rect) (Zone, bool) {
	role := c.tree.Role(obj)
	if role.IsRow() {
		return Zone{}, false
	}
	text := c.tree.Name(obj)
	if text == "" && c.tree.ActiveDescendant(obj) == a11y.None {
		text = roleName(role)
	}
	if text == "" {
		return Zone{}, false
	}
	return Zone{
		Kind:   NameZone,
		Object: obj,
		Text:   text,
		Rect:   a11y.Clip(c.tree.Rect(obj), clip),
		Length: len([]rune(text)),
	}, true
}

// roleName returns the name used for an unnamed object, or "" for roles
// that are pure layout.
func roleName(role a11y.Role) string {
	switch role {
	case a11y.RoleUnknown, a11y.RoleFiller, a11y.RolePanel:
		return ""
	}
	return role.String()
}

// stateIndicator returns the marker shown in front of a stateful object.
func stateIndicator(role a11y.Role, states a11y.StateSet) string {
	switch {
	case role == a11y.RoleRadioButton || role == a11y.RoleRadioMenuItem:
		if states.Has(a11y.StateChecked) {
			return "(x)"
		}
		return "( )"
	case role == a11y.RoleToggleButton:
		if states.Has(a11y.StatePressed) || states.Has(a11y.StateChecked) {
			return "[x]"
		}
		return "[ ]"
	case role == a11y.RoleCheckBox || role == a11y.RoleCheckMenuItem || states.Has(a11y.StateCheckable):
		switch {
		case states.Has(a11y.StateIndeterminate):
			return "[-]"
		case states.Has(a11y.StateChecked):
			return "[x]"
		}
		return "[ ]"
	case states.Has(a11y.StateExpandable):
		if states.Has(a11y.StateExpanded) {
			return "-"
		}
		return "+"
	}
	return ""
}
