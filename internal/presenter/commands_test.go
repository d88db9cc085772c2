package presenter

import (
	"reflect"
	"sort"
	"testing"
)

func TestCommandsSorted(t *testing.T) {
	list := Commands()
	if len(list) == 0 {
		t.Fatal("Commands() is empty")
	}
	if !sort.SliceIsSorted(list, func(i, j int) bool { return list[i].Name < list[j].Name }) {
		t.Error("Commands() is not sorted by name")
	}
	for _, c := range list {
		if c.Description == "" || c.Run == nil {
			t.Errorf("command %q is incomplete", c.Name)
		}
	}
	if _, ok := LookupCommand("no-such-command"); ok {
		t.Error("LookupCommand() found an unknown command")
	}
}

func TestRunCommandsByName(t *testing.T) {
	f := newFixture(t, gridScene, 40)

	steps := []struct {
		name   string
		spoken []string
	}{
		{"start", []string{MsgStart, "OK"}},
		{"previous-line", []string{"Name: Orca Screen"}},
		{"copy", []string{MsgCopied}},
		{"next-item", []string{"Orca"}},
		{"spell-character", []string{"oscar"}},
	}
	for _, step := range steps {
		c, ok := LookupCommand(step.name)
		if !ok {
			t.Fatalf("LookupCommand(%q) not found", step.name)
		}
		if err := c.Run(f.p); err != nil {
			t.Fatalf("%s: Run() error = %v", step.name, err)
		}
		if got := f.spoken(); !reflect.DeepEqual(got, step.spoken) {
			t.Errorf("%s: spoken = %q, want %q", step.name, got, step.spoken)
		}
	}
	if got, _ := f.clip.ReadAll(); got != "Name: Orca Screen" {
		t.Errorf("clipboard = %q, want the review line", got)
	}
}
