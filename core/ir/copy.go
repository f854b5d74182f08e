package ir

// Copy returns a deep copy of the tree, constructs and their payloads
// included. Copy(nil) is nil.
func Copy(n Node) Node {
	switch t := n.(type) {
	case nil:
		return nil
	case *Scalar:
		c := *t
		return &c
	case *Sequence:
		items := make([]Node, len(t.Items))
		for i, item := range t.Items {
			items[i] = Copy(item)
		}
		return &Sequence{Tag: t.Tag, Items: items}
	case *Mapping:
		entries := make([]Entry, len(t.Entries))
		for i, e := range t.Entries {
			entries[i] = Entry{Key: e.Key, Value: Copy(e.Value)}
		}
		return &Mapping{Tag: t.Tag, ID: t.ID, Entries: entries}
	case *Choice:
		return &Choice{Construct: CopyConstruct(t.Construct)}
	default:
		return nil
	}
}

// CopyConstruct returns a deep copy of a construct.
func CopyConstruct(c Construct) Construct {
	switch t := c.(type) {
	case nil:
		return nil
	case *Enum:
		options := make([]Node, len(t.Options))
		for i, o := range t.Options {
			options[i] = Copy(o)
		}
		return &Enum{Options: options, Labels: copyStrings(t.Labels)}
	case *PalettePick:
		cp := *t
		return &cp
	case *Scaled:
		return &Scaled{
			Base:   Copy(t.Base),
			Scales: append([]float64(nil), t.Scales...),
			Labels: copyStrings(t.Labels),
		}
	case *Repeat:
		return &Repeat{Amount: t.Amount, Value: Copy(t.Value)}
	case *Restrict:
		return &Restrict{Amount: t.Amount, Value: Copy(t.Value)}
	case *If:
		cp := &If{
			Refs:         append([]RefPath(nil), t.Refs...),
			Cases:        copyCases(t.Cases),
			Then:         make([]Node, len(t.Then)),
			Default:      Copy(t.Default),
			Labels:       copyStrings(t.Labels),
			DefaultLabel: t.DefaultLabel,
		}
		for i, v := range t.Then {
			cp.Then[i] = Copy(v)
		}
		return cp
	default:
		return nil
	}
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func copyCases(cases []Case) []Case {
	out := make([]Case, len(cases))
	for i, c := range cases {
		terms := make([]CaseTerm, len(c.Terms))
		for j, term := range c.Terms {
			cp := CaseTerm{}
			if term.Value != nil {
				v := *term.Value
				cp.Value = &v
			}
			if term.Range != nil {
				r := *term.Range
				cp.Range = &r
			}
			terms[j] = cp
		}
		out[i] = Case{Terms: terms}
	}
	return out
}
