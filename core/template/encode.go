package template

import (
	"bytes"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/ArenaForge/core/errors"
	"github.com/FocuswithJustin/ArenaForge/core/ir"
)

// Marshal serializes a tree back to YAML. Identifiers are never written.
// Vectors, colors and ranges use flow style, as do plain sequences holding
// only scalars and ranges.
func Marshal(n ir.Node) ([]byte, error) {
	node, err := encodeNode(n)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, errors.Wrap(err, "encode YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encode YAML")
	}
	return buf.Bytes(), nil
}

func encodeNode(n ir.Node) (*yaml.Node, error) {
	switch t := n.(type) {
	case *ir.Scalar:
		return encodeScalar(t), nil
	case *ir.Sequence:
		return encodeSequence(t)
	case *ir.Mapping:
		return encodeMapping(t)
	case *ir.Choice:
		return encodeConstruct(t.Construct)
	default:
		return nil, errors.NewParse("tree", "", "unknown node kind")
	}
}

func encodeScalar(s *ir.Scalar) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	if s.Tag != "" {
		n.Tag = s.Tag
		n.Value = toString(s.Value)
		return n
	}
	switch v := s.Value.(type) {
	case nil:
		n.Tag, n.Value = "!!null", "null"
	case bool:
		n.Tag, n.Value = "!!bool", strconv.FormatBool(v)
	case int64:
		n.Tag, n.Value = "!!int", strconv.FormatInt(v, 10)
	case float64:
		n.Tag, n.Value = "!!float", formatFloat(v)
	case string:
		n.Tag, n.Value = "!!str", v
	default:
		n.Tag, n.Value = "!!str", toString(v)
	}
	return n
}

func encodeSequence(s *ir.Sequence) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if s.Tag != "" {
		n.Tag = s.Tag
	}
	flowable := true
	for _, item := range s.Items {
		c, err := encodeNode(item)
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, c)
		if !isFlowItem(item) {
			flowable = false
		}
	}
	if s.Tag == "!R" || flowable {
		n.Style = yaml.FlowStyle
	}
	return n, nil
}

func encodeMapping(m *ir.Mapping) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if m.Tag != "" {
		n.Tag = m.Tag
	}
	if m.Tag == "!Vector3" || m.Tag == "!RGB" {
		n.Style = yaml.FlowStyle
	}
	for _, e := range m.Entries {
		v, err := encodeNode(e.Value)
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, strNode(e.Key), v)
	}
	return n, nil
}

// isFlowItem reports whether a sequence item keeps the sequence eligible for
// flow style: a plain scalar or a range.
func isFlowItem(n ir.Node) bool {
	switch t := n.(type) {
	case *ir.Scalar:
		return t.Tag == ""
	case *ir.Sequence:
		return t.Tag == "!R"
	default:
		return false
	}
}

func encodeConstruct(c ir.Construct) (*yaml.Node, error) {
	switch t := c.(type) {
	case *ir.Enum:
		if t.Labels == nil {
			n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!ProcList"}
			for _, opt := range t.Options {
				v, err := encodeNode(opt)
				if err != nil {
					return nil, err
				}
				n.Content = append(n.Content, v)
			}
			return n, nil
		}
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!ProcListLabelled"}
		for i, opt := range t.Options {
			v, err := encodeNode(opt)
			if err != nil {
				return nil, err
			}
			item := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			item.Content = append(item.Content,
				strNode("label"), strNode(t.Labels[i]),
				strNode("value"), v)
			n.Content = append(n.Content, item)
		}
		return n, nil

	case *ir.PalettePick:
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!ProcColor",
			Value: strconv.Itoa(t.Amount),
		}, nil

	case *ir.Scaled:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!ProcVector3Scaled"}
		if t.Base != nil {
			base, err := encodeNode(t.Base)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, strNode("base"), base)
		}
		scales := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, s := range t.Scales {
			scales.Content = append(scales.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(s)})
		}
		n.Content = append(n.Content, strNode("scales"), scales)
		if t.Labels != nil {
			n.Content = append(n.Content, strNode("labels"), strListNode(t.Labels))
		}
		return n, nil

	case *ir.Repeat:
		value, err := encodeNode(t.Value)
		if err != nil {
			return nil, err
		}
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!ProcRepeatChoice"}
		n.Content = append(n.Content,
			strNode("amount"), intNode(t.Amount),
			strNode("value"), value)
		return n, nil

	case *ir.Restrict:
		value, err := encodeNode(t.Value)
		if err != nil {
			return nil, err
		}
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!ProcRestrictCombinations"}
		n.Content = append(n.Content,
			strNode("amount"), intNode(t.Amount),
			strNode("item"), value)
		return n, nil

	case *ir.If:
		return encodeIf(t)

	default:
		return nil, errors.NewParse("tree", "", "unknown construct kind")
	}
}

func encodeIf(t *ir.If) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!ProcIf"}

	if len(t.Refs) == 1 {
		n.Content = append(n.Content, strNode("variable"), strNode(t.Refs[0].String()))
	} else {
		refs := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, r := range t.Refs {
			refs.Content = append(refs.Content, strNode(r.String()))
		}
		n.Content = append(n.Content, strNode("variable"), refs)
	}

	cases := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, cs := range t.Cases {
		c, err := encodeCase(cs)
		if err != nil {
			return nil, err
		}
		cases.Content = append(cases.Content, c)
	}
	n.Content = append(n.Content, strNode("cases"), cases)

	then := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, v := range t.Then {
		c, err := encodeNode(v)
		if err != nil {
			return nil, err
		}
		then.Content = append(then.Content, c)
	}
	n.Content = append(n.Content, strNode("then"), then)

	if t.Default != nil {
		def, err := encodeNode(t.Default)
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, strNode("default"), def)
	}
	if t.Labels != nil {
		n.Content = append(n.Content, strNode("labels"), strListNode(t.Labels))
	}
	if t.DefaultLabel != "" {
		n.Content = append(n.Content, strNode("default_label"), strNode(t.DefaultLabel))
	}
	return n, nil
}

func encodeCase(cs ir.Case) (*yaml.Node, error) {
	terms := make([]*yaml.Node, len(cs.Terms))
	for i, term := range cs.Terms {
		switch {
		case term.Range != nil:
			terms[i] = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!R", Style: yaml.FlowStyle}
			terms[i].Content = append(terms[i].Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(term.Range.Min)},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(term.Range.Max)})
		case term.Value != nil:
			terms[i] = encodeScalar(term.Value)
		default:
			return nil, errors.NewParse("tree", "", "empty case term")
		}
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	n.Content = terms
	return n, nil
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intNode(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
}

func strListNode(items []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	for _, s := range items {
		n.Content = append(n.Content, strNode(s))
	}
	return n
}

// formatFloat keeps integral floats recognizably float-typed.
func formatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return formatFloat(t)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return ""
	}
}
