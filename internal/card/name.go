package card

import (
	"strings"

	"github.com/emersion/go-vcard"
)

// Index of each component in the compound N value.
const (
	nameFamily = iota
	nameGiven
	nameAdditional
	namePrefix
	nameSuffix
	nameComponents
)

// AddName sets the structured N field. Every part accepts a string or a
// list of strings; multi-valued parts are stored comma separated inside
// their component.
func (c *Card) AddName(prefix, first, additional, last, suffix interface{}) error {
	parts := make([][]string, nameComponents)
	for _, p := range []struct {
		index int
		field string
		value interface{}
	}{
		{namePrefix, "name prefix", prefix},
		{nameGiven, "first name", first},
		{nameAdditional, "additional name", additional},
		{nameFamily, "last name", last},
		{nameSuffix, "name suffix", suffix},
	} {
		norm, err := Normalize(p.field, p.value, ScalarOrList)
		if err != nil {
			return err
		}
		parts[p.index] = norm
	}
	components := make([]string, nameComponents)
	for i, part := range parts {
		components[i] = joinWireList(part, ',')
	}
	c.vc.Add(vcard.FieldName, &vcard.Field{Value: strings.Join(components, ";")})
	return nil
}

// NamePrefixes returns the honorific prefixes of the N field.
func (c *Card) NamePrefixes() []string {
	return c.nameComponent(namePrefix)
}

// FirstNames returns the given names of the N field.
func (c *Card) FirstNames() []string {
	return c.nameComponent(nameGiven)
}

// AdditionalNames returns the additional names of the N field.
func (c *Card) AdditionalNames() []string {
	return c.nameComponent(nameAdditional)
}

// LastNames returns the family names of the N field.
func (c *Card) LastNames() []string {
	return c.nameComponent(nameFamily)
}

// NameSuffixes returns the honorific suffixes of the N field.
func (c *Card) NameSuffixes() []string {
	return c.nameComponent(nameSuffix)
}

func (c *Card) nameComponent(index int) []string {
	f := c.vc.Get(vcard.FieldName)
	if f == nil {
		return nil
	}
	components := splitEscaped(f.Value, ';')
	if index >= len(components) {
		return nil
	}
	return splitWireList(components[index], ',')
}

// FirstNameLastName renders the name as "given family", falling back to
// the formatted name when the N field carries no usable parts.
func (c *Card) FirstNameLastName() string {
	names := append(append([]string(nil), c.FirstNames()...), c.LastNames()...)
	if len(names) > 0 {
		return strings.Join(names, " ")
	}
	return c.FormattedName()
}

// LastNameFirstName renders the name as "family, given", falling back to
// the formatted name when the N field carries no usable parts.
func (c *Card) LastNameFirstName() string {
	first := c.FirstNames()
	last := c.LastNames()
	if len(first) > 0 && len(last) > 0 {
		return strings.Join(last, " ") + ", " + strings.Join(first, " ")
	}
	if len(last) > 0 {
		return strings.Join(last, " ")
	}
	if len(first) > 0 {
		return strings.Join(first, " ")
	}
	return c.FormattedName()
}
