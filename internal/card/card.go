// Package card implements the vCard document model and its wire codec.
//
// The package explicitly supports the vCard specifications version 3.0
// (RFC 2426) and 4.0 (RFC 6350). A Card wraps the ordered multi-map of field
// occurrences provided by github.com/emersion/go-vcard and enforces the
// details of the two RFCs that the library leaves to its callers: singleton
// cardinality, TYPE vocabularies, preference handling and the custom label
// mechanism used by clients like the Apple address book (X-ABLABEL fields
// paired through a shared group tag).
package card

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-vcard"

	"cardbook/internal/common/logging"
)

// Supported vCard RFC versions.
const (
	Version3 = "3.0"
	Version4 = "4.0"
)

// Extension field names used by the label and company mechanisms.
const (
	FieldLabel        = "X-ABLABEL"
	FieldShowAs       = "X-ABSHOWAS"
	FieldXKind        = "X-KIND"
	FieldXAnniversary = "X-ANNIVERSARY"
)

const (
	defaultVersion = Version3
	defaultKind    = "individual"
)

// Options configures a Card wrapper.
type Options struct {
	// Version is the RFC version for new or unversioned cards. Empty means
	// the default version 3.0.
	Version string
	// PrivateObjects lists the recognized private extension field names.
	PrivateObjects []string
	// LocalizeDates selects locale-style instead of ISO date output.
	LocalizeDates bool
}

// Card wraps a single vCard and presents its data through typed accessors.
// The underlying representation is an ordered multi-map from field name to
// occurrence list; all mutation goes through the accessors, which enforce
// the per-version field constraints.
type Card struct {
	vc             vcard.Card
	privateObjects []string
	localizeDates  bool
}

// New creates an empty card with the configured version set.
func New(opts Options) *Card {
	c := &Card{
		vc:             make(vcard.Card),
		privateObjects: opts.PrivateObjects,
		localizeDates:  opts.LocalizeDates,
	}
	version := opts.Version
	if version == "" {
		version = defaultVersion
	}
	c.SetVersion(version)
	return c
}

// Wrap wraps an already decoded vCard. A card without a version gets the
// configured default; an unsupported version is kept as is but logged.
func Wrap(vc vcard.Card, opts Options) *Card {
	c := &Card{
		vc:             vc,
		privateObjects: opts.PrivateObjects,
		localizeDates:  opts.LocalizeDates,
	}
	if c.Version() == "" {
		version := opts.Version
		if version == "" {
			version = defaultVersion
		}
		logging.Warn("wrapping unversioned vCard, setting version",
			logging.String("version", version))
		c.SetVersion(version)
	} else if !supportedVersion(c.Version()) {
		logging.Warn("wrapping vCard with unsupported version",
			logging.String("version", c.Version()))
	}
	return c
}

// Clone returns a deep copy of the card.
func (c *Card) Clone() *Card {
	vc := make(vcard.Card, len(c.vc))
	for name, fields := range c.vc {
		copied := make([]*vcard.Field, len(fields))
		for i, f := range fields {
			nf := *f
			if f.Params != nil {
				nf.Params = make(vcard.Params, len(f.Params))
				for k, vs := range f.Params {
					nf.Params[k] = append([]string(nil), vs...)
				}
			}
			copied[i] = &nf
		}
		vc[name] = copied
	}
	return &Card{
		vc:             vc,
		privateObjects: append([]string(nil), c.privateObjects...),
		localizeDates:  c.localizeDates,
	}
}

// PrivateObjectNames returns the recognized private extension field names.
func (c *Card) PrivateObjectNames() []string {
	return c.privateObjects
}

// LocalizeDates reports whether date output uses the locale-style layout.
func (c *Card) LocalizeDates() bool {
	return c.localizeDates
}

func (c *Card) String() string {
	return c.FormattedName()
}

func supportedVersion(version string) bool {
	return version == Version3 || version == Version4
}

//
// singleton fields
//

// Version returns the declared vCard version.
func (c *Card) Version() string {
	return c.vc.Value(vcard.FieldVersion)
}

// SetVersion replaces the VERSION field. All vCards always have exactly one
// version; this is a requirement for version 4 but also makes sense for all
// other versions. Unsupported values are stored as given but logged.
func (c *Card) SetVersion(version string) {
	if !supportedVersion(version) {
		logging.Warn("setting vCard version to unsupported version",
			logging.String("version", version))
	}
	c.DeleteField(vcard.FieldVersion)
	c.vc.Add(vcard.FieldVersion, &vcard.Field{Value: strings.TrimSpace(version)})
}

// UID returns the unique identifier of the card.
func (c *Card) UID() string {
	return c.vc.Value(vcard.FieldUID)
}

// SetUID replaces the UID field, keeping at most one occurrence.
func (c *Card) SetUID(uid string) {
	c.DeleteField(vcard.FieldUID)
	c.vc.Add(vcard.FieldUID, &vcard.Field{Value: strings.TrimSpace(uid)})
}

// Revision returns the raw REV timestamp.
func (c *Card) Revision() string {
	return c.vc.Value(vcard.FieldRevision)
}

// UpdateRevision generates a new REV field, replacing any existing one.
func (c *Card) UpdateRevision() {
	c.DeleteField(vcard.FieldRevision)
	c.vc.Add(vcard.FieldRevision, &vcard.Field{
		Value: time.Now().UTC().Format("20060102T150405Z"),
	})
}

// Kind returns the contact kind, "individual" by default. The value "org"
// is presented as "organisation".
func (c *Card) Kind() string {
	kind := c.vc.Value(c.kindField())
	if kind == "" {
		kind = defaultKind
	}
	if kind == "org" {
		return "organisation"
	}
	return kind
}

// SetKind stores the contact kind in KIND (4.0) or X-KIND (3.0).
func (c *Card) SetKind(kind string) {
	if kind == "organisation" {
		kind = "org"
	}
	c.vc.Add(c.kindField(), &vcard.Field{Value: kind})
}

// KindField returns the field name the kind is stored under for the card's
// version.
func (c *Card) KindField() string {
	return c.kindField()
}

func (c *Card) kindField() string {
	if c.Version() == Version4 {
		return vcard.FieldKind
	}
	return FieldXKind
}

// FormattedName returns the FN value.
func (c *Card) FormattedName() string {
	return unescapeValue(c.vc.Value(vcard.FieldFormattedName))
}

// SetFormattedName sets the FN field, deleting all previous occurrences.
// Version 4 of the specs requires exactly one FN; this is enforced for all
// versions. An empty value is autofilled from the N field when name parts
// exist.
func (c *Card) SetFormattedName(value string) {
	c.DeleteField(vcard.FieldFormattedName)
	final := strings.TrimSpace(value)
	if final == "" {
		if first, last := c.FirstNames(), c.LastNames(); len(first) > 0 || len(last) > 0 {
			var names []string
			names = append(names, c.NamePrefixes()...)
			names = append(names, first...)
			names = append(names, last...)
			names = append(names, c.NameSuffixes()...)
			final = strings.Join(names, " ")
		}
	}
	c.vc.Add(vcard.FieldFormattedName, &vcard.Field{Value: escapeValue(final)})
}

//
// label groups
//

// groupLabel returns the custom label attached to the given group. A label
// resolves only when exactly two occurrences share the group and exactly
// one of them is an X-ABLABEL.
func (c *Card) groupLabel(group string) string {
	if group == "" {
		return ""
	}
	count := 0
	label := ""
	for name, fields := range c.vc {
		for _, f := range fields {
			if f.Group != group {
				continue
			}
			count++
			if name == FieldLabel {
				if label != "" {
					return ""
				}
				label = unescapeValue(f.Value)
			}
		}
	}
	if count != 2 {
		return ""
	}
	return label
}

// newGroup returns an unused group name of the form item<kind><number>.
func (c *Card) newGroup(kind string) string {
	for counter := 1; ; counter++ {
		group := "item" + kind + strconv.Itoa(counter)
		if !c.groupInUse(group) {
			return group
		}
	}
}

func (c *Card) groupInUse(group string) bool {
	for _, fields := range c.vc {
		for _, f := range fields {
			if f.Group == group {
				return true
			}
		}
	}
	return false
}

// DeleteField deletes all occurrences of the named field. An occurrence
// that is part of a group also takes its paired X-ABLABEL along.
func (c *Card) DeleteField(name string) {
	fields := c.vc[name]
	if len(fields) == 0 {
		return
	}
	groups := make(map[string]bool)
	for _, f := range fields {
		if f.Group != "" {
			groups[f.Group] = true
		}
	}
	delete(c.vc, name)
	if name == FieldLabel || len(groups) == 0 {
		return
	}
	labels := c.vc[FieldLabel]
	kept := labels[:0]
	for _, l := range labels {
		if !groups[l.Group] {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		delete(c.vc, FieldLabel)
	} else {
		c.vc[FieldLabel] = kept
	}
}

// addLabelled adds a field with the given wire value. With a label the
// field is placed in a fresh group together with an X-ABLABEL carrying the
// label text.
func (c *Card) addLabelled(name, wireValue, label, groupKind string) {
	f := &vcard.Field{Value: wireValue}
	c.vc.Add(name, f)
	if label == "" {
		return
	}
	group := c.newGroup(groupKind)
	f.Group = group
	c.vc.Add(FieldLabel, &vcard.Field{Value: escapeValue(label), Group: group})
}

//
// repeatable scalar fields
//

// LabeledValue is one occurrence of a repeatable scalar field with an
// optional custom label.
type LabeledValue struct {
	Label string
	Value string
}

// LabeledList is one organisation occurrence: the organization name
// followed by its sub-units, with an optional custom label.
type LabeledList struct {
	Label  string
	Values []string
}

// getMulti collects all occurrences of a repeatable field, resolving the
// attached labels, sorted with plain values (by value) before labelled ones
// (by label).
func (c *Card) getMulti(name string) []LabeledValue {
	var values []LabeledValue
	for _, f := range c.vc[name] {
		values = append(values, LabeledValue{
			Label: c.groupLabel(f.Group),
			Value: unescapeValue(f.Value),
		})
	}
	sortLabeledValues(values)
	return values
}

func sortLabeledValues(values []LabeledValue) {
	sort.SliceStable(values, func(i, j int) bool {
		a, b := values[i], values[j]
		if (a.Label == "") != (b.Label == "") {
			return a.Label == ""
		}
		if a.Label == "" {
			return a.Value < b.Value
		}
		return a.Label < b.Label
	})
}

// addScalar normalizes and stores one occurrence of a repeatable scalar
// field. groupKind names the field in generated label groups.
func (c *Card) addScalar(name, fieldName string, value interface{}, label, groupKind string) error {
	s, err := NormalizeScalar(fieldName, value)
	if err != nil {
		return err
	}
	c.addLabelled(name, escapeValue(s), label, groupKind)
	return nil
}

// Nicknames returns all nicknames, sorted.
func (c *Card) Nicknames() []LabeledValue {
	return c.getMulti(vcard.FieldNickname)
}

// AddNickname adds one NICKNAME occurrence with an optional label.
func (c *Card) AddNickname(value interface{}, label string) error {
	return c.addScalar(vcard.FieldNickname, "nickname", value, label, "nickname")
}

// Notes returns all notes, sorted.
func (c *Card) Notes() []LabeledValue {
	return c.getMulti(vcard.FieldNote)
}

// AddNote adds one NOTE occurrence with an optional label.
func (c *Card) AddNote(value interface{}, label string) error {
	return c.addScalar(vcard.FieldNote, "note", value, label, "note")
}

// Roles returns all roles, sorted.
func (c *Card) Roles() []LabeledValue {
	return c.getMulti(vcard.FieldRole)
}

// AddRole adds one ROLE occurrence with an optional label.
func (c *Card) AddRole(value interface{}, label string) error {
	return c.addScalar(vcard.FieldRole, "role", value, label, "role")
}

// Titles returns all titles, sorted.
func (c *Card) Titles() []LabeledValue {
	return c.getMulti(vcard.FieldTitle)
}

// AddTitle adds one TITLE occurrence with an optional label.
func (c *Card) AddTitle(value interface{}, label string) error {
	return c.addScalar(vcard.FieldTitle, "title", value, label, "title")
}

// Webpages returns all URLs, sorted.
func (c *Card) Webpages() []LabeledValue {
	return c.getMulti(vcard.FieldURL)
}

// AddWebpage adds one URL occurrence with an optional label.
func (c *Card) AddWebpage(value interface{}, label string) error {
	return c.addScalar(vcard.FieldURL, "webpage", value, label, "url")
}

//
// organisations
//

// Organisations returns all organisations, each an organization name
// followed by sub-units, sorted with plain entries before labelled ones.
func (c *Card) Organisations() []LabeledList {
	var orgs []LabeledList
	for _, f := range c.vc[vcard.FieldOrganization] {
		orgs = append(orgs, LabeledList{
			Label:  c.groupLabel(f.Group),
			Values: splitWireList(f.Value, ';'),
		})
	}
	sort.SliceStable(orgs, func(i, j int) bool {
		a, b := orgs[i], orgs[j]
		if (a.Label == "") != (b.Label == "") {
			return a.Label == ""
		}
		if a.Label == "" {
			return lessStringSlice(a.Values, b.Values)
		}
		return a.Label < b.Label
	})
	return orgs
}

// AddOrganisation adds one ORG occurrence. The first organisation of a card
// without an FN field derives the formatted name from the organization name
// and marks the contact as a company.
func (c *Card) AddOrganisation(value interface{}, label string) error {
	norm, err := Normalize("organisation", value, List)
	if err != nil {
		return err
	}
	c.addLabelled(vcard.FieldOrganization, joinWireList(norm, ';'), label, "org")
	if c.vc.Value(vcard.FieldFormattedName) == "" {
		if orgs := c.Organisations(); len(orgs) > 0 {
			name := strings.Join(orgs[0].Values, ", ")
			name = strings.ReplaceAll(name, "\n", " ")
			name = strings.ReplaceAll(name, "\\", "")
			c.SetFormattedName(name)
			c.vc.Add(FieldShowAs, &vcard.Field{Value: "COMPANY"})
		}
	}
	return nil
}

//
// categories
//

// Categories returns all CATEGORIES occurrences, each occurrence a list of
// category names, sorted as groups. The single-occurrence case keeps the
// same shape; collapsing to a bare list is a display concern.
func (c *Card) Categories() [][]string {
	var groups [][]string
	for _, f := range c.vc[vcard.FieldCategories] {
		groups = append(groups, splitWireList(f.Value, ','))
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return lessStringSlice(groups[i], groups[j])
	})
	return groups
}

// AddCategories adds one CATEGORIES occurrence holding the given names.
func (c *Card) AddCategories(value interface{}) error {
	norm, err := Normalize("category", value, List)
	if err != nil {
		return err
	}
	c.vc.Add(vcard.FieldCategories, &vcard.Field{Value: joinWireList(norm, ',')})
	return nil
}

//
// birthday and anniversary
//

// Birthday returns the birthday as a date or free-text value. Malformed
// values yield a zero Date, not an error.
func (c *Card) Birthday() Date {
	return c.dateField(vcard.FieldBirthday)
}

// SetBirthday stores the given date as BDAY, replacing any existing one.
// Free-text values require version 4.0; an unrepresentable value is logged
// and the card stays unchanged.
func (c *Card) SetBirthday(d Date) {
	value, isText, ok := wireDateValue(d, c.Version())
	if !ok {
		logging.Warn("failed to set birthday",
			logging.String("value", d.Text),
			logging.String("version", c.Version()))
		return
	}
	c.DeleteField(vcard.FieldBirthday)
	c.vc.Add(vcard.FieldBirthday, dateWireField(value, isText))
}

// Anniversary returns the anniversary, falling back to the X-ANNIVERSARY
// extension used with vCard 3.0.
func (c *Card) Anniversary() Date {
	if d := c.dateField(vcard.FieldAnniversary); !d.IsZero() {
		return d
	}
	if f := c.vc.Get(FieldXAnniversary); f != nil {
		if t, err := ParseDate(f.Value); err == nil {
			return Date{Time: t}
		}
	}
	return Date{}
}

// SetAnniversary stores the given date, replacing any existing one. With
// version 3.0 the date goes into X-ANNIVERSARY.
func (c *Card) SetAnniversary(d Date) {
	value, isText, ok := wireDateValue(d, c.Version())
	if !ok {
		logging.Warn("failed to set anniversary",
			logging.String("value", d.Text),
			logging.String("version", c.Version()))
		return
	}
	c.DeleteField(vcard.FieldAnniversary)
	c.DeleteField(FieldXAnniversary)
	name := vcard.FieldAnniversary
	if !isText && c.Version() != Version4 {
		name = FieldXAnniversary
	}
	c.vc.Add(name, dateWireField(value, isText))
}

// FormattedBirthday renders the birthday for display.
func (c *Card) FormattedBirthday() string {
	return FormatDate(c.Birthday(), c.localizeDates)
}

// FormattedAnniversary renders the anniversary for display.
func (c *Card) FormattedAnniversary() string {
	return FormatDate(c.Anniversary(), c.localizeDates)
}

func (c *Card) dateField(name string) Date {
	f := c.vc.Get(name)
	if f == nil {
		return Date{}
	}
	if f.Params.Get("VALUE") == "text" {
		return Date{Text: unescapeValue(f.Value)}
	}
	if t, err := ParseDate(f.Value); err == nil {
		return Date{Time: t}
	}
	return Date{}
}

func dateWireField(value string, isText bool) *vcard.Field {
	f := &vcard.Field{Value: value}
	if isText {
		f.Value = escapeValue(value)
		f.Params = vcard.Params{"VALUE": []string{"text"}}
	}
	return f
}

//
// value escaping
//

// escapeValue escapes a raw string for storage in a vCard text value.
func escapeValue(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case ',':
			b.WriteString(`\,`)
		case ';':
			b.WriteString(`\;`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// unescapeValue reverses escapeValue.
func unescapeValue(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n', 'N':
				b.WriteByte('\n')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// splitEscaped splits s on every unescaped sep, keeping escapes intact.
func splitEscaped(s string, sep byte) []string {
	var parts []string
	var current strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			current.WriteByte(s[i])
			i++
			current.WriteByte(s[i])
		case s[i] == sep:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteByte(s[i])
		}
	}
	return append(parts, current.String())
}

// splitWireList splits a compound wire value and unescapes its components,
// dropping empty ones.
func splitWireList(s string, sep byte) []string {
	var out []string
	for _, part := range splitEscaped(s, sep) {
		if part = strings.TrimSpace(unescapeValue(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// joinWireList escapes the components and joins them into a compound wire
// value.
func joinWireList(values []string, sep byte) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = escapeValue(v)
	}
	return strings.Join(escaped, string(sep))
}

func lessStringSlice(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
