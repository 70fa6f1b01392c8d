package ppd

import "strings"

// UIType is the user-interface type declared by *OpenUI.
type UIType int

const (
	UIPickOne UIType = iota
	UIPickMany
	UIBoolean
)

func (t UIType) String() string {
	switch t {
	case UIPickMany:
		return "PickMany"
	case UIBoolean:
		return "Boolean"
	default:
		return "PickOne"
	}
}

// Choice is one selectable value of an option.
type Choice struct {
	Keyword string
	Text    string
	Code    string
}

// Option is a UI option declared between *OpenUI and *CloseUI.
type Option struct {
	Keyword   string
	Text      string
	UI        UIType
	JCL       bool
	DefChoice string
	Choices   []Choice
}

// Choice returns the named choice, if declared.
func (o *Option) Choice(keyword string) (Choice, bool) {
	for _, c := range o.Choices {
		if c.Keyword == keyword {
			return c, true
		}
	}
	return Choice{}, false
}

// Subgroup is an *OpenSubGroup section inside a group.
type Subgroup struct {
	Name    string
	Text    string
	Options []*Option
}

// Group is an *OpenGroup section. Options declared outside any group are
// collected in the "General" group.
type Group struct {
	Name      string
	Text      string
	Options   []*Option
	Subgroups []*Subgroup
}

// Attr is a main-keyword line: *Name Spec/Text: Value.
type Attr struct {
	Name  string
	Spec  string
	Text  string
	Value string
	Line  int
}

// File is a parsed PPD.
type File struct {
	Path          string
	FormatVersion string
	OptionGroups  []*Group
	Attrs         []*Attr

	options map[string]*Option
}

// GroupDefaults holds the default choices of one option group, keyed by option
// keyword, with subgroup defaults nested by subgroup name.
type GroupDefaults struct {
	Options   map[string]string            `json:"options" yaml:"options"`
	Subgroups map[string]map[string]string `json:"subgroups,omitempty" yaml:"subgroups,omitempty"`
}

// Defaults maps option-group names to their default choices.
type Defaults map[string]GroupDefaults

// FindOption returns the option with the given keyword.
func (f *File) FindOption(keyword string) (*Option, bool) {
	opt, ok := f.options[strings.TrimPrefix(keyword, "*")]
	return opt, ok
}

// FindAttr returns the first attribute with the given main keyword.
func (f *File) FindAttr(name string) (*Attr, bool) {
	for _, attr := range f.Attrs {
		if attr.Name == name {
			return attr, true
		}
	}
	return nil, false
}

// FindAttrs returns every attribute with the given main keyword, in file order.
func (f *File) FindAttrs(name string) []*Attr {
	var out []*Attr
	for _, attr := range f.Attrs {
		if attr.Name == name {
			out = append(out, attr)
		}
	}
	return out
}

// NickName returns the *NickName value, falling back to *ModelName.
func (f *File) NickName() string {
	if attr, ok := f.FindAttr("NickName"); ok && attr.Value != "" {
		return attr.Value
	}
	if attr, ok := f.FindAttr("ModelName"); ok {
		return attr.Value
	}
	return ""
}

// Defaults flattens the option tree into group -> keyword -> default choice.
func (f *File) Defaults() Defaults {
	out := make(Defaults, len(f.OptionGroups))
	for _, group := range f.OptionGroups {
		gd := GroupDefaults{Options: optionDefaults(group.Options)}
		if len(group.Subgroups) > 0 {
			gd.Subgroups = make(map[string]map[string]string, len(group.Subgroups))
			for _, sub := range group.Subgroups {
				gd.Subgroups[sub.Name] = optionDefaults(sub.Options)
			}
		}
		out[group.Name] = gd
	}
	return out
}

func optionDefaults(options []*Option) map[string]string {
	out := make(map[string]string, len(options))
	for _, opt := range options {
		out[opt.Keyword] = opt.DefChoice
	}
	return out
}

func (f *File) group(name, text string) *Group {
	for _, g := range f.OptionGroups {
		if g.Name == name {
			return g
		}
	}
	if text == "" {
		text = name
	}
	g := &Group{Name: name, Text: text}
	f.OptionGroups = append(f.OptionGroups, g)
	return g
}

func (g *Group) subgroup(name, text string) *Subgroup {
	for _, s := range g.Subgroups {
		if s.Name == name {
			return s
		}
	}
	if text == "" {
		text = name
	}
	s := &Subgroup{Name: name, Text: text}
	g.Subgroups = append(g.Subgroups, s)
	return s
}
