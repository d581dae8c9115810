package card_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardbook/internal/card"
	"cardbook/internal/common/errors"
)

func newCard(t *testing.T, version string) *card.Card {
	t.Helper()
	return card.New(card.Options{Version: version})
}

func TestNewCardDefaults(t *testing.T) {
	c := card.New(card.Options{})
	assert.Equal(t, "3.0", c.Version())
	assert.Equal(t, "individual", c.Kind())
	assert.Empty(t, c.FormattedName())
}

func TestDecodeMinimalCard(t *testing.T) {
	data := []byte("BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Test\r\nEND:VCARD\r\n")
	c, err := card.Decode(data, card.Options{})
	require.NoError(t, err)
	assert.Equal(t, "3.0", c.Version())
	assert.Equal(t, "Test", c.FormattedName())
	assert.Empty(t, c.PhoneNumbers())
	assert.Empty(t, c.Categories())
}

func TestDecodeGarbage(t *testing.T) {
	_, err := card.Decode([]byte("this is not a vcard"), card.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := newCard(t, "3.0")
	require.NoError(t, c.AddName("", "John", "", "Doe", ""))
	c.SetFormattedName("")
	require.NoError(t, c.AddPhoneNumber("home", "+49 123 456"))
	require.NoError(t, c.AddEmail("work", "john@example.com"))
	require.NoError(t, c.AddNote("likes semicolons; and, commas", ""))
	c.SetUID("testuid123")

	data, err := c.Encode()
	require.NoError(t, err)
	decoded, err := card.Decode(data, card.Options{})
	require.NoError(t, err)

	assert.Equal(t, "John Doe", decoded.FormattedName())
	assert.Equal(t, []string{"John"}, decoded.FirstNames())
	assert.Equal(t, []string{"Doe"}, decoded.LastNames())
	assert.Equal(t, map[string][]string{"home": {"+49 123 456"}},
		decoded.PhoneNumbers())
	assert.Equal(t, map[string][]string{"work": {"john@example.com"}},
		decoded.Emails())
	require.Len(t, decoded.Notes(), 1)
	assert.Equal(t, "likes semicolons; and, commas", decoded.Notes()[0].Value)
}

func TestFormattedNameAutofill(t *testing.T) {
	c := newCard(t, "3.0")
	require.NoError(t, c.AddName("Dr.", "Jane", "", "Doe", "PhD"))
	c.SetFormattedName("")
	assert.Equal(t, "Dr. Jane Doe PhD", c.FormattedName())
}

func TestOrganisationSideEffect(t *testing.T) {
	c := newCard(t, "3.0")
	require.NoError(t, c.AddOrganisation([]interface{}{"ACME", "R&D"}, ""))

	// a card without a name becomes a company card
	assert.Equal(t, "ACME, R&D", c.FormattedName())
	orgs := c.Organisations()
	require.Len(t, orgs, 1)
	assert.Equal(t, []string{"ACME", "R&D"}, orgs[0].Values)

	data, err := c.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "X-ABSHOWAS:COMPANY")
}

func TestOrganisationKeepsExistingName(t *testing.T) {
	c := newCard(t, "3.0")
	c.SetFormattedName("Jane Doe")
	require.NoError(t, c.AddOrganisation("ACME", ""))
	assert.Equal(t, "Jane Doe", c.FormattedName())
	data, err := c.Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "X-ABSHOWAS")
}

func TestOrganisationsSorted(t *testing.T) {
	c := newCard(t, "3.0")
	c.SetFormattedName("Jane Doe")
	for _, org := range []string{"foo", "bar", "baz"} {
		require.NoError(t, c.AddOrganisation(org, ""))
	}
	orgs := c.Organisations()
	require.Len(t, orgs, 3)
	assert.Equal(t, []string{"bar"}, orgs[0].Values)
	assert.Equal(t, []string{"baz"}, orgs[1].Values)
	assert.Equal(t, []string{"foo"}, orgs[2].Values)
}

func TestLabelledValuesSortPlainFirst(t *testing.T) {
	c := newCard(t, "3.0")
	require.NoError(t, c.AddNickname("zed", ""))
	require.NoError(t, c.AddNickname("buddy", "alias"))
	require.NoError(t, c.AddNickname("anna", ""))

	nicknames := c.Nicknames()
	require.Len(t, nicknames, 3)
	assert.Equal(t, card.LabeledValue{Value: "anna"}, nicknames[0])
	assert.Equal(t, card.LabeledValue{Value: "zed"}, nicknames[1])
	assert.Equal(t, card.LabeledValue{Label: "alias", Value: "buddy"}, nicknames[2])
}

func TestLabelPairingSurvivesRoundTrip(t *testing.T) {
	c := newCard(t, "3.0")
	require.NoError(t, c.AddWebpage("https://example.com", "blog"))
	data, err := c.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "X-ABLABEL:blog")

	decoded, err := card.Decode(data, card.Options{})
	require.NoError(t, err)
	pages := decoded.Webpages()
	require.Len(t, pages, 1)
	assert.Equal(t, "blog", pages[0].Label)
	assert.Equal(t, "https://example.com", pages[0].Value)
}

func TestLabelIgnoredForOvercrowdedGroup(t *testing.T) {
	// three occurrences share the group, the label must not resolve
	data := []byte("BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Test\r\n" +
		"item1.URL:https://example.com\r\n" +
		"item1.NICKNAME:Johnny\r\n" +
		"item1.X-ABLABEL:blog\r\n" +
		"END:VCARD\r\n")
	c, err := card.Decode(data, card.Options{})
	require.NoError(t, err)

	pages := c.Webpages()
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Label)
	nicks := c.Nicknames()
	require.Len(t, nicks, 1)
	assert.Empty(t, nicks[0].Label)
}

func TestLabelIgnoredForDoubleLabelGroup(t *testing.T) {
	// two labels in one group, the pairing is ambiguous
	data := []byte("BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Test\r\n" +
		"item1.URL:https://example.com\r\n" +
		"item1.X-ABLABEL:blog\r\n" +
		"item1.X-ABLABEL:homepage\r\n" +
		"END:VCARD\r\n")
	c, err := card.Decode(data, card.Options{})
	require.NoError(t, err)

	pages := c.Webpages()
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Label)
}

func TestDeleteFieldRemovesPairedLabel(t *testing.T) {
	c := newCard(t, "3.0")
	require.NoError(t, c.AddWebpage("https://example.com", "blog"))
	c.DeleteField("URL")
	data, err := c.Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "X-ABLABEL")
}

func TestPhoneNumbersVersion3(t *testing.T) {
	c := newCard(t, "3.0")
	require.NoError(t, c.AddPhoneNumber("pref,home", "+49 123 456"))

	phones := c.PhoneNumbers()
	require.Len(t, phones, 1)
	// the preference comes back as a bare pref token after the types
	assert.Equal(t, []string{"+49 123 456"}, phones["home, pref"])

	data, err := c.Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "tel:")
}

func TestPhoneNumbersVersion4(t *testing.T) {
	c := newCard(t, "4.0")
	require.NoError(t, c.AddPhoneNumber("pref,home", "+49 123 456"))

	data, err := c.Encode()
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "tel:+49 123 456")
	assert.Contains(t, text, "PREF=1")

	decoded, err := card.Decode(data, card.Options{})
	require.NoError(t, err)
	phones := decoded.PhoneNumbers()
	assert.Equal(t, []string{"+49 123 456"}, phones["home, pref=1"])
}

func TestPhoneNumberCustomLabel(t *testing.T) {
	c := newCard(t, "3.0")
	require.NoError(t, c.AddPhoneNumber("emergency", "+49 999"))
	phones := c.PhoneNumbers()
	assert.Equal(t, []string{"+49 999"}, phones["emergency"])
}

func TestPhoneAndEmailValuesTrimmed(t *testing.T) {
	c := newCard(t, "3.0")
	require.NoError(t, c.AddPhoneNumber("home", " +49 123 456 "))
	require.NoError(t, c.AddEmail("work", "  john@example.com  "))

	assert.Equal(t, []string{"+49 123 456"}, c.PhoneNumbers()["home"])
	assert.Equal(t, []string{"john@example.com"}, c.Emails()["work"])

	data, err := c.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "TEL;TYPE=home:+49 123 456\r\n")
	assert.Contains(t, string(data), "john@example.com\r\n")
}

func TestPhoneLabelGroupAvoidsTakenName(t *testing.T) {
	// decoded card with a sparse label index: the counted name itemtel2
	// is already taken and must be skipped
	data := []byte("BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Test\r\n" +
		"itemtel2.TEL:+1 111\r\n" +
		"itemtel2.X-ABLABEL:old\r\n" +
		"END:VCARD\r\n")
	c, err := card.Decode(data, card.Options{})
	require.NoError(t, err)
	require.NoError(t, c.AddPhoneNumber("emergency", "+2 222"))

	phones := c.PhoneNumbers()
	assert.Equal(t, []string{"+1 111"}, phones["old"])
	assert.Equal(t, []string{"+2 222"}, phones["emergency"])

	encoded, err := c.Encode()
	require.NoError(t, err)
	decoded, err := card.Decode(encoded, card.Options{})
	require.NoError(t, err)
	assert.Equal(t, phones, decoded.PhoneNumbers())
}

func TestPhoneNumberTypeErrors(t *testing.T) {
	c := newCard(t, "3.0")
	err := c.AddPhoneNumber("", "+49 123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label for +49 123 is missing")

	err = c.AddPhoneNumber("first,second", "+49 123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one custom label: first, second")
}

func TestEmailsSorted(t *testing.T) {
	c := newCard(t, "3.0")
	require.NoError(t, c.AddEmail("home", "zed@example.com"))
	require.NoError(t, c.AddEmail("home", "anna@example.com"))
	assert.Equal(t, []string{"anna@example.com", "zed@example.com"},
		c.Emails()["home"])
}

func TestPostAddresses(t *testing.T) {
	c := newCard(t, "3.0")
	require.NoError(t, c.AddPostAddress("home", "", "", "Main Street 1",
		"12345", "Berlin", "", "Germany"))
	require.NoError(t, c.AddPostAddress("home", "", "", "Other Road 2",
		"54321", "Aachen", "", "Germany"))

	addresses := c.PostAddresses()["home"]
	require.Len(t, addresses, 2)
	// sorted by city, then street
	assert.Equal(t, "Aachen", addresses[0].City)
	assert.Equal(t, "Berlin", addresses[1].City)

	formatted := c.FormattedPostAddresses()["home"]
	require.Len(t, formatted, 2)
	assert.Equal(t, "Main Street 1\n12345 Berlin\nGermany", formatted[1])
}

func TestPostAddressTypeError(t *testing.T) {
	c := newCard(t, "3.0")
	err := c.AddPostAddress("", "", "", "Main Street 1", "", "Berlin", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label for Main Street 1 is missing")
}

func TestCategoriesKeepOccurrenceShape(t *testing.T) {
	c := newCard(t, "3.0")
	require.NoError(t, c.AddCategories([]interface{}{"friends", "sports"}))
	assert.Equal(t, [][]string{{"friends", "sports"}}, c.Categories())

	require.NoError(t, c.AddCategories("colleagues"))
	assert.Equal(t, [][]string{{"colleagues"}, {"friends", "sports"}},
		c.Categories())
}

func TestBirthdayVersions(t *testing.T) {
	date := card.Date{Time: time.Date(1972, 10, 16, 0, 0, 0, 0, time.UTC)}

	v3 := newCard(t, "3.0")
	v3.SetBirthday(date)
	assert.Equal(t, "1972-10-16", card.FormatDate(v3.Birthday(), false))

	v4 := newCard(t, "4.0")
	v4.SetBirthday(card.Date{Text: "sometime in october"})
	assert.Equal(t, "sometime in october", v4.Birthday().Text)

	// free text requires version 4.0, the card stays unchanged
	v3.SetBirthday(card.Date{Text: "sometime"})
	assert.Equal(t, "1972-10-16", card.FormatDate(v3.Birthday(), false))
}

func TestAnniversaryFallback(t *testing.T) {
	date := card.Date{Time: time.Date(2005, 6, 4, 0, 0, 0, 0, time.UTC)}

	v3 := newCard(t, "3.0")
	v3.SetAnniversary(date)
	data, err := v3.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "X-ANNIVERSARY:2005-06-04")

	decoded, err := card.Decode(data, card.Options{})
	require.NoError(t, err)
	assert.Equal(t, "2005-06-04", card.FormatDate(decoded.Anniversary(), false))

	v4 := newCard(t, "4.0")
	v4.SetAnniversary(date)
	data, err = v4.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "ANNIVERSARY:20050604")
	assert.NotContains(t, string(data), "X-ANNIVERSARY")
}

func TestPrivateObjects(t *testing.T) {
	opts := card.Options{PrivateObjects: []string{"Jabber", "Twitter"}}
	c := card.New(opts)
	require.NoError(t, c.AddPrivateObject("Jabber", "jane@jabber.example", ""))
	require.NoError(t, c.AddPrivateObject("Twitter", "@jane", "work"))

	objects := c.PrivateObjects()
	require.Len(t, objects["Jabber"], 1)
	assert.Equal(t, "jane@jabber.example", objects["Jabber"][0].Value)
	require.Len(t, objects["Twitter"], 1)
	assert.Equal(t, "work", objects["Twitter"][0].Label)

	data, err := c.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "X-JABBER:jane@jabber.example")
}

func TestKindStorage(t *testing.T) {
	v3 := newCard(t, "3.0")
	v3.SetKind("organisation")
	assert.Equal(t, "organisation", v3.Kind())
	data, err := v3.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "X-KIND:org")

	v4 := newCard(t, "4.0")
	v4.SetKind("organisation")
	data, err = v4.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "KIND:org")
	assert.NotContains(t, string(data), "X-KIND")
}

func TestCloneIsIndependent(t *testing.T) {
	c := newCard(t, "3.0")
	c.SetFormattedName("Jane Doe")
	require.NoError(t, c.AddPhoneNumber("home", "+49 123"))

	clone := c.Clone()
	require.NoError(t, clone.AddPhoneNumber("work", "+49 456"))
	clone.SetFormattedName("Someone Else")

	assert.Equal(t, "Jane Doe", c.FormattedName())
	assert.Len(t, c.PhoneNumbers(), 1)
	assert.Len(t, clone.PhoneNumbers(), 2)
}

func TestValueEscaping(t *testing.T) {
	c := newCard(t, "3.0")
	c.SetFormattedName("Doe; John, Jr.")
	data, err := c.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `Doe\; John\, Jr.`)

	decoded, err := card.Decode(data, card.Options{})
	require.NoError(t, err)
	assert.Equal(t, "Doe; John, Jr.", decoded.FormattedName())
}

func TestUpdateRevision(t *testing.T) {
	c := newCard(t, "3.0")
	c.UpdateRevision()
	rev := c.Revision()
	require.NotEmpty(t, rev)
	assert.True(t, strings.HasSuffix(rev, "Z"))
	_, err := time.Parse("20060102T150405Z", rev)
	assert.NoError(t, err)
}
