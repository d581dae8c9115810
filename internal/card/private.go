package card

import (
	"sort"
	"strings"
)

// PrivateObjects returns the values of all recognized private extension
// fields, keyed by the configured object name. Each list is sorted by its
// rendered form, label first for labelled entries.
func (c *Card) PrivateObjects() map[string][]LabeledValue {
	objects := make(map[string][]LabeledValue)
	if len(c.privateObjects) == 0 {
		return objects
	}
	canonical := make(map[string]string, len(c.privateObjects))
	for _, name := range c.privateObjects {
		canonical["x-"+strings.ToLower(name)] = name
	}
	for fieldName, fields := range c.vc {
		key, ok := canonical[strings.ToLower(fieldName)]
		if !ok {
			continue
		}
		for _, f := range fields {
			objects[key] = append(objects[key], LabeledValue{
				Label: c.groupLabel(f.Group),
				Value: unescapeValue(f.Value),
			})
		}
	}
	for _, list := range objects {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].render() < list[j].render()
		})
	}
	return objects
}

func (v LabeledValue) render() string {
	if v.Label == "" {
		return v.Value
	}
	return v.Label + ": " + v.Value
}

// AddPrivateObject adds one occurrence of the named private extension
// field, stored under the X- prefixed upper case field name.
func (c *Card) AddPrivateObject(name string, value interface{}, label string) error {
	s, err := NormalizeScalar(name, value)
	if err != nil {
		return err
	}
	c.addLabelled("X-"+strings.ToUpper(name), escapeValue(s), label, "")
	return nil
}
