// Package template implements the structured text representation of a
// contact: a YAML document with a fixed key schema that can be shown to the
// user, edited and applied back to a card.
package template

import (
	"fmt"
	"sort"
	"strings"

	"cardbook/internal/card"
)

// Top-level keys of the structured text schema.
const (
	keyFormattedName = "Formatted name"
	keyPrefix        = "Prefix"
	keyFirstName     = "First name"
	keyAdditional    = "Additional"
	keyLastName      = "Last name"
	keySuffix        = "Suffix"
	keyNickname      = "Nickname"
	keyOrganisation  = "Organisation"
	keyKind          = "Kind"
	keyTitle         = "Title"
	keyRole          = "Role"
	keyPhone         = "Phone"
	keyEmail         = "Email"
	keyAddress       = "Address"
	keyCategories    = "Categories"
	keyWebpage       = "Webpage"
	keyAnniversary   = "Anniversary"
	keyBirthday      = "Birthday"
	keyPrivate       = "Private"
	keyNote          = "Note"
)

// addressKeys lists the sub-keys of one address entry in schema order.
var addressKeys = []string{"Box", "Extended", "Street", "Code", "City",
	"Region", "Country"}

// Column the colon of top-level keys is aligned to, the width of the
// longest key.
const topColumn = len(keyFormattedName)

// labeled wraps a value that carries a custom label: it renders as a
// single-entry mapping from label to value.
type labeled struct {
	label string
	value interface{}
}

// Render converts the card into its editable YAML form. The output parses
// back into the same card through Update, labels and grouping included.
func Render(c *card.Card) string {
	var lines []string
	add := func(name string, value interface{}) {
		lines = append(lines, convertToYAML(name, value, 0, topColumn, true)...)
	}
	add(keyFormattedName, c.FormattedName())
	add(keyPrefix, stringList(c.NamePrefixes()))
	add(keyFirstName, stringList(c.FirstNames()))
	add(keyAdditional, stringList(c.AdditionalNames()))
	add(keyLastName, stringList(c.LastNames()))
	add(keySuffix, stringList(c.NameSuffixes()))
	add(keyNickname, labeledValues(c.Nicknames()))
	add(keyOrganisation, organisationValues(c.Organisations()))
	add(keyKind, c.Kind())
	add(keyTitle, labeledValues(c.Titles()))
	add(keyRole, labeledValues(c.Roles()))
	lines = append(lines, renderTypeMap(keyPhone, c.PhoneNumbers(),
		[]string{"cell", "home"})...)
	lines = append(lines, renderTypeMap(keyEmail, c.Emails(),
		[]string{"home", "work"})...)
	lines = append(lines, renderAddresses(c.PostAddresses())...)
	lines = append(lines, renderCategories(c.Categories())...)
	add(keyWebpage, labeledValues(c.Webpages()))
	add(keyAnniversary, renderDate(c.Anniversary()))
	add(keyBirthday, renderDate(c.Birthday()))
	if names := c.PrivateObjectNames(); len(names) > 0 {
		lines = append(lines, renderPrivate(names, c.PrivateObjects())...)
	}
	add(keyNote, labeledValues(c.Notes()))
	return strings.Join(lines, "\n") + "\n"
}

func stringList(values []string) interface{} {
	list := make([]interface{}, len(values))
	for i, v := range values {
		list[i] = v
	}
	return list
}

func labeledValues(values []card.LabeledValue) interface{} {
	list := make([]interface{}, len(values))
	for i, v := range values {
		if v.Label == "" {
			list[i] = v.Value
		} else {
			list[i] = labeled{label: v.Label, value: v.Value}
		}
	}
	return list
}

func organisationValues(orgs []card.LabeledList) interface{} {
	list := make([]interface{}, len(orgs))
	for i, org := range orgs {
		if org.Label == "" {
			list[i] = stringList(org.Values)
		} else {
			list[i] = labeled{label: org.Label, value: stringList(org.Values)}
		}
	}
	return list
}

func renderDate(d card.Date) string {
	if d.Text != "" {
		return "text=" + d.Text
	}
	return card.FormatDate(d, false)
}

// renderTypeMap renders a phone or email section: the type keys sorted case
// insensitively, or the default type keys with empty values when the card
// carries none.
func renderTypeMap(name string, values map[string][]string, defaults []string) []string {
	lines := []string{name + spaces(topColumn-len(name)) + " :"}
	if len(values) == 0 {
		for _, typ := range defaults {
			lines = append(lines, convertToYAML(typ, "", 4, -1, true)...)
		}
		return lines
	}
	for _, typ := range sortedKeysFold(values) {
		lines = append(lines, convertToYAML(typ, stringList(values[typ]), 4, -1, true)...)
	}
	return lines
}

func renderAddresses(addresses map[string][]card.PostAddress) []string {
	lines := []string{keyAddress + spaces(topColumn-len(keyAddress)) + " :"}
	if len(addresses) == 0 {
		addresses = map[string][]card.PostAddress{"home": {{}}}
	}
	column := 0
	for _, key := range addressKeys {
		if len(key) > column {
			column = len(key)
		}
	}
	for _, typ := range sortedKeysFold(addresses) {
		list := addresses[typ]
		if len(list) == 1 {
			lines = append(lines, spaces(4)+typ+" :")
			lines = append(lines, renderAddress(list[0], 8, column)...)
			continue
		}
		lines = append(lines, spaces(4)+typ+" :")
		for _, adr := range list {
			lines = append(lines, spaces(8)+"- ")
			lines = append(lines, renderAddress(adr, 12, column)...)
		}
	}
	return lines
}

func renderAddress(adr card.PostAddress, indentation, column int) []string {
	parts := map[string]string{
		"Box":      adr.Box,
		"Extended": adr.Extended,
		"Street":   adr.Street,
		"Code":     adr.Code,
		"City":     adr.City,
		"Region":   adr.Region,
		"Country":  adr.Country,
	}
	var lines []string
	for _, key := range addressKeys {
		lines = append(lines, convertToYAML(key, parts[key], indentation, column, true)...)
	}
	return lines
}

// renderCategories keeps the occurrence structure invertible: a single
// occurrence collapses to a flat value while multiple occurrences always
// render as nested lists, even single-element ones.
func renderCategories(groups [][]string) []string {
	if len(groups) == 1 {
		return convertToYAML(keyCategories, stringList(groups[0]), 0, topColumn, true)
	}
	value := make([]interface{}, len(groups))
	for i, group := range groups {
		value[i] = stringList(group)
	}
	if len(groups) == 0 {
		return convertToYAML(keyCategories, "", 0, topColumn, true)
	}
	lines := []string{keyCategories + spaces(topColumn-len(keyCategories)) + " :"}
	for _, group := range groups {
		lines = append(lines, spaces(4)+"- ")
		for _, category := range group {
			lines = append(lines, spaces(8)+"- "+
				indentMultilineString(category, 12, true))
		}
	}
	return lines
}

func renderPrivate(names []string, objects map[string][]card.LabeledValue) []string {
	lines := []string{keyPrivate + spaces(topColumn-len(keyPrivate)) + " :"}
	column := 0
	for _, name := range names {
		if len(name) > column {
			column = len(name)
		}
	}
	for _, name := range names {
		lines = append(lines, convertToYAML(name, labeledValues(objects[name]), 4, column, true)...)
	}
	return lines
}

// convertToYAML renders one name and value pair as indented YAML lines.
// Single-element lists collapse to their element so that "name: value"
// comes out instead of a one-item list. Nested lists indent by four spaces
// per level and labelled values render as single-entry mappings.
func convertToYAML(name string, value interface{}, indentation, indexOfColon int, showMultiLine bool) []string {
	var lines []string
	if value == nil {
		value = ""
	}
	if list, ok := value.([]interface{}); ok && len(list) == 1 {
		if s, ok := list[0].(string); ok {
			value = s
		} else if inner, ok := list[0].([]interface{}); ok && len(inner) == 1 {
			if s, ok := inner[0].(string); ok {
				value = s
			}
		}
	}
	switch v := value.(type) {
	case string:
		lines = append(lines, fmt.Sprintf("%s%s%s: %s",
			spaces(indentation), name, spaces(indexOfColon-len(name)),
			indentMultilineString(v, indentation+4, showMultiLine)))
	case []interface{}:
		lines = append(lines, fmt.Sprintf("%s%s%s: ",
			spaces(indentation), name, spaces(indexOfColon-len(name))))
		for _, outer := range v {
			if inner, ok := outer.([]interface{}); ok && len(inner) == 1 {
				if s, ok := inner[0].(string); ok {
					outer = s
				}
			}
			switch o := outer.(type) {
			case string:
				lines = append(lines, spaces(indentation+4)+"- "+
					indentMultilineString(o, indentation+8, showMultiLine))
			case []interface{}:
				lines = append(lines, spaces(indentation+4)+"- ")
				for _, inner := range o {
					if s, ok := inner.(string); ok {
						lines = append(lines, spaces(indentation+8)+"- "+
							indentMultilineString(s, indentation+12, showMultiLine))
					}
				}
			case labeled:
				lines = append(lines, convertToYAML("- "+o.label, o.value,
					indentation+4, indexOfColon, showMultiLine)...)
			}
		}
	}
	return lines
}

// indentMultilineString turns values containing newlines or ": " into a
// block scalar so they survive the YAML round trip.
func indentMultilineString(value string, indentation int, showMultiLine bool) string {
	if strings.Contains(value, "\n") || strings.Contains(value, ": ") {
		lines := []string{""}
		if showMultiLine {
			lines = []string{"|"}
		}
		for _, line := range strings.Split(value, "\n") {
			lines = append(lines, spaces(indentation)+strings.TrimSpace(line))
		}
		return strings.Join(lines, "\n")
	}
	return strings.TrimSpace(value)
}

func spaces(n int) string {
	if n < 1 {
		return ""
	}
	return strings.Repeat(" ", n)
}

func sortedKeysFold[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})
	return keys
}
