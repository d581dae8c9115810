package template

import (
	"strings"

	"cardbook/internal/card"
)

// Pretty renders the card for human consumption, grouped into sections.
// Verbose output additionally shows the address book name and the UID.
func Pretty(c *card.Card, verbose bool, addressBook string) string {
	var lines []string
	add := func(name string, value interface{}, indentation int) {
		lines = append(lines, convertToYAML(name, value, indentation, -1, false)...)
	}

	lines = append(lines, "Name: "+c.FormattedName())
	if len(c.FirstNames()) > 0 || len(c.LastNames()) > 0 {
		var names []string
		names = append(names, c.NamePrefixes()...)
		names = append(names, c.FirstNames()...)
		names = append(names, c.AdditionalNames()...)
		names = append(names, c.LastNames()...)
		names = append(names, c.NameSuffixes()...)
		lines = append(lines, "Full name: "+strings.Join(names, " "))
	}
	lines = append(lines, "Kind: "+c.Kind())
	if orgs := c.Organisations(); len(orgs) > 0 {
		add("Organisation", organisationValues(orgs), 0)
	}
	if verbose && addressBook != "" {
		lines = append(lines, "Address book: "+addressBook)
	}

	anniversary := c.FormattedAnniversary()
	birthday := c.FormattedBirthday()
	nicknames := c.Nicknames()
	roles := c.Roles()
	titles := c.Titles()
	if anniversary != "" || birthday != "" || len(nicknames) > 0 ||
		len(roles) > 0 || len(titles) > 0 {
		lines = append(lines, "General:")
		if anniversary != "" {
			lines = append(lines, "    Anniversary: "+anniversary)
		}
		if birthday != "" {
			lines = append(lines, "    Birthday: "+birthday)
		}
		if len(nicknames) > 0 {
			add("Nickname", labeledValues(nicknames), 4)
		}
		if len(roles) > 0 {
			add("Role", labeledValues(roles), 4)
		}
		if len(titles) > 0 {
			add("Title", labeledValues(titles), 4)
		}
	}

	if phones := c.PhoneNumbers(); len(phones) > 0 {
		lines = append(lines, "Phone")
		for _, typ := range sortedKeysFold(phones) {
			add(typ, stringList(phones[typ]), 4)
		}
	}
	if emails := c.Emails(); len(emails) > 0 {
		lines = append(lines, "E-Mail")
		for _, typ := range sortedKeysFold(emails) {
			add(typ, stringList(emails[typ]), 4)
		}
	}
	if addresses := c.FormattedPostAddresses(); len(addresses) > 0 {
		lines = append(lines, "Address")
		for _, typ := range sortedKeysFold(addresses) {
			add(typ, stringList(addresses[typ]), 4)
		}
	}

	if objects := c.PrivateObjects(); len(objects) > 0 {
		lines = append(lines, "Private:")
		for _, name := range c.PrivateObjectNames() {
			if values, ok := objects[name]; ok {
				add(name, labeledValues(values), 4)
			}
		}
	}

	categories := c.Categories()
	webpages := c.Webpages()
	notes := c.Notes()
	if len(categories) > 0 || len(webpages) > 0 || len(notes) > 0 ||
		(verbose && c.UID() != "") {
		lines = append(lines, "Miscellaneous")
		if verbose && c.UID() != "" {
			lines = append(lines, "    UID: "+c.UID())
		}
		if len(categories) > 0 {
			add("Categories", categoryValues(categories), 4)
		}
		if len(webpages) > 0 {
			add("Webpage", labeledValues(webpages), 4)
		}
		if len(notes) > 0 {
			add("Note", labeledValues(notes), 4)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// categoryValues flattens a single CATEGORIES occurrence for display,
// multiple occurrences stay nested.
func categoryValues(groups [][]string) interface{} {
	if len(groups) == 1 {
		return stringList(groups[0])
	}
	value := make([]interface{}, len(groups))
	for i, group := range groups {
		value[i] = stringList(group)
	}
	return value
}
