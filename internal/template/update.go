package template

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"gopkg.in/yaml.v3"

	"cardbook/internal/card"
	"cardbook/internal/common/errors"
)

// Parse decodes a structured text document and validates it to some
// degree: it must not be empty and it must name a person or an
// organisation. Scalars come back as strings regardless of how the YAML
// parser resolved them.
func Parse(input []byte) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := yaml.Unmarshal(input, &data); err != nil {
		return nil, errors.ParseError("invalid YAML document", err)
	}
	if len(data) == 0 {
		return nil, errors.ValidationError("", "found no contact information")
	}
	for key, value := range data {
		data[key] = coerceValue(value)
	}
	if isEmptyValue(data[keyFirstName]) && isEmptyValue(data[keyLastName]) &&
		isEmptyValue(data[keyOrganisation]) {
		return nil, errors.ValidationError("",
			"you must either enter a name or an organisation")
	}
	return data, nil
}

// Update parses the structured text document and replaces the card's
// contents with it. Every schema key fully replaces its field category; a
// missing or empty key empties the category. The revision timestamp is
// renewed.
func Update(c *card.Card, input []byte) error {
	data, err := Parse(input)
	if err != nil {
		return err
	}
	return apply(c, data)
}

func apply(c *card.Card, data map[string]interface{}) error {
	c.UpdateRevision()

	// The N field is added even when all parts are empty, some consumers
	// require its presence.
	c.DeleteField(vcard.FieldName)
	if err := c.AddName(data[keyPrefix], data[keyFirstName],
		data[keyAdditional], data[keyLastName], data[keySuffix]); err != nil {
		return err
	}
	if raw, ok := data[keyFormattedName]; ok {
		s, err := asString(keyFormattedName, raw)
		if err != nil {
			return err
		}
		c.SetFormattedName(s)
	}
	if c.FormattedName() == "" {
		// trigger autofilling from the name parts
		c.SetFormattedName("")
	}

	c.DeleteField(vcard.FieldNickname)
	if err := setStringList(c.AddNickname, keyNickname, data); err != nil {
		return err
	}

	c.DeleteField(vcard.FieldOrganization)
	c.DeleteField(card.FieldShowAs)
	if err := setStringList(c.AddOrganisation, keyOrganisation, data); err != nil {
		return err
	}

	c.DeleteField(c.KindField())
	if raw, ok := data[keyKind]; ok {
		s, err := asString(keyKind, raw)
		if err != nil {
			return err
		}
		if s != "" {
			c.SetKind(s)
		}
	}

	c.DeleteField(vcard.FieldRole)
	if err := setStringList(c.AddRole, keyRole, data); err != nil {
		return err
	}

	c.DeleteField(vcard.FieldTitle)
	if err := setStringList(c.AddTitle, keyTitle, data); err != nil {
		return err
	}

	c.DeleteField(vcard.FieldTelephone)
	if err := setTypeMap(keyPhone, "phone number", data, c.AddPhoneNumber); err != nil {
		return err
	}

	c.DeleteField(vcard.FieldEmail)
	if err := setTypeMap(keyEmail, "email address", data, c.AddEmail); err != nil {
		return err
	}

	c.DeleteField(vcard.FieldAddress)
	if err := setAddresses(c, data); err != nil {
		return err
	}

	c.DeleteField(vcard.FieldCategories)
	if err := setCategories(c, data); err != nil {
		return err
	}

	c.DeleteField(vcard.FieldURL)
	if err := setStringList(c.AddWebpage, keyWebpage, data); err != nil {
		return err
	}

	c.DeleteField(vcard.FieldAnniversary)
	c.DeleteField(card.FieldXAnniversary)
	if err := setDate(c, keyAnniversary, data, c.SetAnniversary); err != nil {
		return err
	}

	c.DeleteField(vcard.FieldBirthday)
	if err := setDate(c, keyBirthday, data, c.SetBirthday); err != nil {
		return err
	}

	for _, name := range c.PrivateObjectNames() {
		c.DeleteField("X-" + strings.ToUpper(name))
	}
	if err := setPrivate(c, data); err != nil {
		return err
	}

	c.DeleteField(vcard.FieldNote)
	return setStringList(c.AddNote, keyNote, data)
}

// setStringList feeds a string, a labelled single-entry mapping or a list
// of either into the given setter, one call per value.
func setStringList(setter func(interface{}, string) error, key string, data map[string]interface{}) error {
	value := data[key]
	if isEmptyValue(value) {
		return nil
	}
	switch v := value.(type) {
	case string:
		return setter(v, "")
	case map[string]interface{}:
		label, val := singleEntry(v)
		return setter(val, label)
	case []interface{}:
		for _, item := range v {
			if isEmptyValue(item) {
				continue
			}
			if m, ok := item.(map[string]interface{}); ok {
				label, val := singleEntry(m)
				if err := setter(val, label); err != nil {
					return err
				}
				continue
			}
			if err := setter(item, ""); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.ValidationError(key, "must be a string or a list of strings")
	}
}

// setTypeMap handles the phone and email sections: a mapping from type
// specification to one value or a list of values.
func setTypeMap(key, what string, data map[string]interface{}, add func(string, string) error) error {
	raw := data[key]
	if isEmptyValue(raw) {
		return nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return errors.ValidationErrorf(key, "missing type value for %s field", what)
	}
	for _, typ := range sortedKeysFold(m) {
		values, ok := scalarOrList(m[typ])
		if !ok {
			return errors.ValidationErrorf(key,
				"got no value or list of values for the %s type %s", what, typ)
		}
		for _, value := range values {
			if value == "" {
				continue
			}
			if err := add(typ, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func setAddresses(c *card.Card, data map[string]interface{}) error {
	raw := data[keyAddress]
	if isEmptyValue(raw) {
		return nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return errors.ValidationError(keyAddress,
			"missing type value for post address field")
	}
	for _, typ := range sortedKeysFold(m) {
		var list []interface{}
		switch entry := m[typ].(type) {
		case map[string]interface{}:
			list = []interface{}{entry}
		case []interface{}:
			list = entry
		default:
			return errors.ValidationErrorf(keyAddress,
				"got no address or list of addresses for the post address type %s", typ)
		}
		for _, item := range list {
			adr, ok := item.(map[string]interface{})
			if !ok {
				return errors.ValidationErrorf(keyAddress,
					"one of the %s type address list items does not contain an address", typ)
			}
			empty := true
			for _, key := range addressKeys {
				if !isEmptyValue(adr[key]) {
					empty = false
					break
				}
			}
			if empty {
				continue
			}
			if err := c.AddPostAddress(typ, adr["Box"], adr["Extended"],
				adr["Street"], adr["Code"], adr["City"], adr["Region"],
				adr["Country"]); err != nil {
				return err
			}
		}
	}
	return nil
}

// setCategories packs a flat list of strings into one CATEGORIES
// occurrence; a list containing sublists yields one occurrence per entry.
func setCategories(c *card.Card, data map[string]interface{}) error {
	raw := data[keyCategories]
	if isEmptyValue(raw) {
		return nil
	}
	switch v := raw.(type) {
	case string:
		return c.AddCategories([]interface{}{v})
	case []interface{}:
		flat := true
		for _, item := range v {
			if _, ok := item.(string); !ok {
				flat = false
				break
			}
		}
		if flat {
			return c.AddCategories(v)
		}
		for _, item := range v {
			if isEmptyValue(item) {
				continue
			}
			if s, ok := item.(string); ok {
				if err := c.AddCategories([]interface{}{s}); err != nil {
					return err
				}
				continue
			}
			if err := c.AddCategories(item); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.ValidationError(keyCategories,
			"must be a string or a list of strings")
	}
}

var (
	textDatePattern = regexp.MustCompile(`^text[\s]*=`)
	textDateSplit   = regexp.MustCompile(`text[\s]*=`)
	yearlessPattern = regexp.MustCompile(`^--\d\d-?\d\d$`)
)

func setDate(c *card.Card, key string, data map[string]interface{}, set func(card.Date)) error {
	raw := data[key]
	if isEmptyValue(raw) {
		return nil
	}
	value, ok := raw.(string)
	if !ok {
		return errors.ValidationError(key, "must be a string")
	}
	if textDatePattern.MatchString(value) {
		if c.Version() != card.Version4 {
			return errors.ValidationErrorf(key,
				"free text format for %s only usable with vCard version 4.0",
				strings.ToLower(key))
		}
		var parts []string
		for _, part := range textDateSplit.Split(value, -1) {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			set(card.Date{Text: strings.Join(parts, ", ")})
		}
		return nil
	}
	if yearlessPattern.MatchString(value) && c.Version() != card.Version4 {
		return errors.ValidationErrorf(key,
			"%s format --mm-dd and --mmdd only usable with vCard version 4.0, "+
				"you may use 1900 as placeholder if the year is unknown", key)
	}
	t, err := card.ParseDate(value)
	if err != nil {
		return errors.ValidationErrorf(key,
			"wrong %s format or invalid date, use format yyyy-mm-dd or yyyy-mm-ddTHH:MM:SS",
			strings.ToLower(key))
	}
	set(card.Date{Time: t})
	return nil
}

func setPrivate(c *card.Card, data map[string]interface{}) error {
	raw := data[keyPrivate]
	if isEmptyValue(raw) {
		return nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return errors.ValidationError(keyPrivate,
			"private objects must consist of key and value pairs")
	}
	names := c.PrivateObjectNames()
	for _, key := range sortedKeysFold(m) {
		recognized := false
		for _, name := range names {
			if name == key {
				recognized = true
				break
			}
		}
		if !recognized {
			return errors.ValidationErrorf(keyPrivate,
				"unknown private object key %s, supported keys: %s",
				key, strings.Join(names, ", "))
		}
		name := key
		setter := func(value interface{}, label string) error {
			return c.AddPrivateObject(name, value, label)
		}
		if err := setStringList(setter, key, m); err != nil {
			return err
		}
	}
	return nil
}

// coerceValue maps every YAML scalar back onto a string, recursively. The
// schema treats all leaf values as text even where the YAML parser resolves
// numbers, booleans or timestamps.
func coerceValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02T15:04:05")
	case []interface{}:
		for i, item := range v {
			v[i] = coerceValue(item)
		}
		return v
	case map[string]interface{}:
		for key, item := range v {
			v[key] = coerceValue(item)
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func isEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

func asString(key string, value interface{}) (string, error) {
	if value == nil {
		return "", nil
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return "", errors.ValidationError(key, "must be a string")
}

// singleEntry unpacks a labelled value, a mapping with one entry. With more
// than one entry the smallest key wins to stay deterministic.
func singleEntry(m map[string]interface{}) (label string, value interface{}) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys[0], m[keys[0]]
}

func scalarOrList(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case string:
		return []string{v}, true
	case []interface{}:
		values := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				if item == nil {
					continue
				}
				return nil, false
			}
			values = append(values, s)
		}
		return values, true
	}
	return nil, false
}
