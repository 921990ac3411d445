package picker

// Selection is the most recently picked option. Valid is false until a pick
// succeeds, and after a pick on an empty list.
type Selection struct {
	Value string
	Valid bool
}

// Picker holds the current option list and the last selection. It is not
// safe for concurrent use.
type Picker struct {
	opts     OptionList
	selected Selection
	src      Source
}

// New returns an empty Picker drawing from src (nil means the global
// generator).
func New(src Source) *Picker {
	return &Picker{opts: OptionList{}, src: src}
}

// SetText replaces the option list with the normalized form of text.
func (p *Picker) SetText(text string) OptionList {
	p.opts = Normalize(text)
	return p.Options()
}

// SetOptions replaces the option list with the cleaned form of opts.
func (p *Picker) SetOptions(opts []string) OptionList {
	p.opts = Clean(opts)
	return p.Options()
}

// Options returns a copy of the current list.
func (p *Picker) Options() OptionList {
	return p.opts.Clone()
}

// Pick selects a random option from the current list and records it.
func (p *Picker) Pick() Selection {
	v, ok := Select(p.opts, p.src)
	p.selected = Selection{Value: v, Valid: ok}
	return p.selected
}

// Selection returns the result of the last Pick.
func (p *Picker) Selection() Selection {
	return p.selected
}
