package schedule

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/form990-cli/internal/fetcher"
)

// node is a namespace-agnostic XML element.
type node struct {
	name     string
	attrs    map[string]string
	text     strings.Builder
	children []*node
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (n *node) childrenNamed(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// find walks a path of local names, taking the first match at each step.
func (n *node) find(path []string) *node {
	cur := n
	for _, p := range path {
		if cur = cur.child(p); cur == nil {
			return nil
		}
	}
	return cur
}

// findAll returns every element matching the path; only the last step may repeat.
func (n *node) findAll(path []string) []*node {
	if len(path) == 0 {
		return nil
	}
	parent := n.find(path[:len(path)-1])
	if parent == nil {
		return nil
	}
	return parent.childrenNamed(path[len(path)-1])
}

func (n *node) value() string {
	return strings.TrimSpace(n.text.String())
}

// Filing is a parsed e-file return.
type Filing struct {
	root *node
}

// Parse reads an e-file return document.
func Parse(r io.Reader) (*Filing, error) {
	dec := fetcher.NewXMLDecoder(r)

	var stack []*node
	var root *node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "schedule: read token")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local}
			if len(t.Attr) > 0 {
				n.attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, eris.New("schedule: multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, eris.New("schedule: empty document")
	}
	if root.name != "Return" {
		return nil, eris.Errorf("schedule: unexpected root element %q", root.name)
	}
	return &Filing{root: root}, nil
}

// Version returns the schema version declared on the return, e.g. "2015v2.1".
func (f *Filing) Version() string {
	return f.root.attrs["returnVersion"]
}

// ReturnType returns the header's return type code, e.g. "990" or "990EZ".
func (f *Filing) ReturnType() string {
	if n := f.root.find([]string{"ReturnHeader", "ReturnTypeCd"}); n != nil {
		return n.value()
	}
	return ""
}

// Has reports whether the return carries the named schedule.
func (f *Filing) Has(name string) bool {
	return f.scheduleRoot(name) != nil
}

func (f *Filing) scheduleRoot(name string) *node {
	path, ok := scheduleRoots[name]
	if !ok {
		return nil
	}
	return f.root.find(splitPath(path))
}

// Schedule extracts the named schedule. Parts with no resolvable variables
// and groups with no entries are left out of the result.
func (f *Filing) Schedule(name string) (*Result, error) {
	if _, known := scheduleRoots[name]; !known {
		return nil, eris.Errorf("schedule: unknown schedule %q", name)
	}
	root := f.scheduleRoot(name)
	if root == nil {
		return nil, ErrNoSchedule
	}

	res := &Result{
		Name:   name,
		Parts:  make(map[string]Part),
		Groups: make(map[string][]Part),
	}

	groupVars := make(map[string][]Variable)
	for _, v := range variablesFor(name) {
		if v.Group {
			groupVars[v.Part] = append(groupVars[v.Part], v)
			continue
		}
		n := root.find(splitPath(v.Path))
		if n == nil {
			continue
		}
		part, ok := res.Parts[v.Part]
		if !ok {
			part = make(Part)
			res.Parts[v.Part] = part
		}
		part[v.Name] = n.value()
	}

	for group, vars := range groupVars {
		elem, ok := groupElements[group]
		if !ok {
			return nil, eris.Errorf("schedule: no element for group %q", group)
		}
		for _, g := range root.findAll(splitPath(elem)) {
			entry := make(Part)
			for _, v := range vars {
				if n := g.find(splitPath(v.Path)); n != nil {
					entry[v.Name] = n.value()
				}
			}
			res.Groups[group] = append(res.Groups[group], entry)
		}
	}

	return res, nil
}
