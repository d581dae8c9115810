package card

import (
	"sort"
	"strconv"
	"strings"

	"github.com/emersion/go-vcard"
)

// PhoneNumbers returns all phone numbers grouped by their joined type key,
// each list sorted. vCard 4.0 tel: URIs are stripped down to the bare
// number.
func (c *Card) PhoneNumbers() map[string][]string {
	numbers := make(map[string][]string)
	for _, f := range c.vc[vcard.FieldTelephone] {
		key := typeKey(c.typesFor(f, "voice"))
		value := unescapeValue(f.Value)
		if strings.HasPrefix(strings.ToLower(value), "tel:") {
			value = value[len("tel:"):]
		}
		numbers[key] = append(numbers[key], value)
	}
	for _, list := range numbers {
		sort.Strings(list)
	}
	return numbers
}

// AddPhoneNumber adds one TEL occurrence. typeSpec is a comma separated
// list of type labels; it must yield at least one standard type, custom
// label or preference and at most one custom label. With version 4.0 the
// number is stored as a tel: URI and the preference as a PREF parameter,
// with 3.0 as a bare value with a "pref" TYPE token.
func (c *Card) AddPhoneNumber(typeSpec, number string) error {
	standard, custom, pref := parseTypeValue(splitTypeSpec(typeSpec), c.phoneTypes())
	if err := checkTypeValue("phone number", number, standard, custom, pref); err != nil {
		return err
	}
	number, err := NormalizeScalar("phone number", number)
	if err != nil {
		return err
	}
	f := &vcard.Field{Params: make(vcard.Params)}
	if c.Version() == Version4 {
		f.Value = escapeValue("tel:" + number)
		f.Params["VALUE"] = []string{"uri"}
		if pref > 0 {
			f.Params["PREF"] = []string{strconv.Itoa(pref)}
		}
	} else {
		f.Value = escapeValue(number)
		if pref > 0 {
			standard = append(standard, "pref")
		}
	}
	if len(standard) > 0 {
		f.Params["TYPE"] = standard
	}
	c.vc.Add(vcard.FieldTelephone, f)
	if len(custom) > 0 {
		c.attachIndexedLabel(f, "itemtel", custom[0])
	}
	return nil
}

// Emails returns all email addresses grouped by their joined type key, each
// list sorted.
func (c *Card) Emails() map[string][]string {
	emails := make(map[string][]string)
	for _, f := range c.vc[vcard.FieldEmail] {
		key := typeKey(c.typesFor(f, "internet"))
		emails[key] = append(emails[key], unescapeValue(f.Value))
	}
	for _, list := range emails {
		sort.Strings(list)
	}
	return emails
}

// AddEmail adds one EMAIL occurrence, with the same type policy as
// AddPhoneNumber.
func (c *Card) AddEmail(typeSpec, address string) error {
	standard, custom, pref := parseTypeValue(splitTypeSpec(typeSpec), c.emailTypes())
	if err := checkTypeValue("email address", address, standard, custom, pref); err != nil {
		return err
	}
	address, err := NormalizeScalar("email address", address)
	if err != nil {
		return err
	}
	f := &vcard.Field{Value: escapeValue(address), Params: make(vcard.Params)}
	if c.Version() == Version4 {
		if pref > 0 {
			f.Params["PREF"] = []string{strconv.Itoa(pref)}
		}
	} else if pref > 0 {
		standard = append(standard, "pref")
	}
	if len(standard) > 0 {
		f.Params["TYPE"] = standard
	}
	c.vc.Add(vcard.FieldEmail, f)
	if len(custom) > 0 {
		c.attachIndexedLabel(f, "itememail", custom[0])
	}
	return nil
}

// PostAddress is one structured postal address.
type PostAddress struct {
	Box      string
	Extended string
	Street   string
	Code     string
	City     string
	Region   string
	Country  string
}

// Index of each component in the compound ADR value.
const (
	adrBox = iota
	adrExtended
	adrStreet
	adrCity
	adrRegion
	adrCode
	adrCountry
	adrComponents
)

// PostAddresses returns all post addresses grouped by their joined type
// key, each list sorted by city then street, case insensitively.
func (c *Card) PostAddresses() map[string][]PostAddress {
	addresses := make(map[string][]PostAddress)
	for _, f := range c.vc[vcard.FieldAddress] {
		key := typeKey(c.typesFor(f, "home"))
		addresses[key] = append(addresses[key], parsePostAddress(f.Value))
	}
	for _, list := range addresses {
		sort.SliceStable(list, func(i, j int) bool {
			a := strings.ToLower(list[i].City) + "\x00" + strings.ToLower(list[i].Street)
			b := strings.ToLower(list[j].City) + "\x00" + strings.ToLower(list[j].Street)
			return a < b
		})
	}
	return addresses
}

func parsePostAddress(wire string) PostAddress {
	components := splitEscaped(wire, ';')
	component := func(index int) string {
		if index >= len(components) {
			return ""
		}
		return strings.Join(splitWireList(components[index], ','), ", ")
	}
	return PostAddress{
		Box:      component(adrBox),
		Extended: component(adrExtended),
		Street:   component(adrStreet),
		City:     component(adrCity),
		Region:   component(adrRegion),
		Code:     component(adrCode),
		Country:  component(adrCountry),
	}
}

// AddPostAddress adds one ADR occurrence, with the same type policy as
// AddPhoneNumber. Every address part accepts a string or a list of strings.
func (c *Card) AddPostAddress(typeSpec string, box, extended, street, code, city, region, country interface{}) error {
	parts := make([][]string, adrComponents)
	for _, p := range []struct {
		index int
		field string
		value interface{}
	}{
		{adrBox, "box address field", box},
		{adrExtended, "extended address field", extended},
		{adrStreet, "street", street},
		{adrCode, "post code", code},
		{adrCity, "city", city},
		{adrRegion, "region", region},
		{adrCountry, "country", country},
	} {
		norm, err := Normalize(p.field, p.value, ScalarOrList)
		if err != nil {
			return err
		}
		parts[p.index] = norm
	}
	standard, custom, pref := parseTypeValue(splitTypeSpec(typeSpec), c.addressTypes())
	if err := checkTypeValue("post address", strings.Join(parts[adrStreet], ", "), standard, custom, pref); err != nil {
		return err
	}
	components := make([]string, adrComponents)
	for i, part := range parts {
		components[i] = joinWireList(part, ',')
	}
	f := &vcard.Field{
		Value:  strings.Join(components, ";"),
		Params: make(vcard.Params),
	}
	if c.Version() == Version4 {
		if pref > 0 {
			f.Params["PREF"] = []string{strconv.Itoa(pref)}
		}
	} else if pref > 0 {
		standard = append(standard, "pref")
	}
	if len(standard) > 0 {
		f.Params["TYPE"] = standard
	}
	c.vc.Add(vcard.FieldAddress, f)
	if len(custom) > 0 {
		c.attachIndexedLabel(f, "itemadr", custom[0])
	}
	return nil
}

// FormattedPostAddresses renders every post address as a multi-line
// string, grouped like PostAddresses.
func (c *Card) FormattedPostAddresses() map[string][]string {
	formatted := make(map[string][]string)
	for key, list := range c.PostAddresses() {
		rendered := make([]string, 0, len(list))
		for _, adr := range list {
			rendered = append(rendered, adr.Format())
		}
		formatted[key] = rendered
	}
	return formatted
}

// Format renders the address in the usual street, code and city, region
// and country line order, skipping empty parts.
func (a PostAddress) Format() string {
	var lines []string
	if a.Street != "" {
		lines = append(lines, a.Street)
	}
	switch {
	case a.Box != "" && a.Extended != "":
		lines = append(lines, a.Box+" "+a.Extended)
	case a.Box != "":
		lines = append(lines, a.Box)
	case a.Extended != "":
		lines = append(lines, a.Extended)
	}
	switch {
	case a.Code != "" && a.City != "":
		lines = append(lines, a.Code+" "+a.City)
	case a.Code != "":
		lines = append(lines, a.Code)
	case a.City != "":
		lines = append(lines, a.City)
	}
	switch {
	case a.Region != "" && a.Country != "":
		lines = append(lines, a.Region+", "+a.Country)
	case a.Region != "":
		lines = append(lines, a.Region)
	case a.Country != "":
		lines = append(lines, a.Country)
	}
	return strings.Join(lines, "\n")
}

// IsEmpty reports whether every address part is empty.
func (a PostAddress) IsEmpty() bool {
	return a == PostAddress{}
}

// attachIndexedLabel puts the field into the next counted group of the
// given prefix and pairs it with an X-ABLABEL carrying the custom label.
// Sparse indices on a decoded card could make the counted name collide
// with an existing group, so taken names are skipped.
func (c *Card) attachIndexedLabel(f *vcard.Field, prefix, label string) {
	count := 0
	for _, l := range c.vc[FieldLabel] {
		if strings.HasPrefix(l.Group, prefix) {
			count++
		}
	}
	group := prefix + strconv.Itoa(count+1)
	for c.groupInUse(group) {
		count++
		group = prefix + strconv.Itoa(count+1)
	}
	f.Group = group
	c.vc.Add(FieldLabel, &vcard.Field{Value: escapeValue(label), Group: group})
}

func splitTypeSpec(spec string) []string {
	return strings.Split(spec, ",")
}
