package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardbook/internal/calendar"
	"cardbook/internal/card"
	"cardbook/internal/contact"
)

func newContact(t *testing.T, uid, name string, version string) *contact.Contact {
	t.Helper()
	c := card.New(card.Options{Version: version})
	c.SetUID(uid)
	c.SetFormattedName(name)
	return &contact.Contact{Card: c}
}

func TestBirthdays(t *testing.T) {
	dated := newContact(t, "uid1", "John Doe", "3.0")
	dated.Card.SetBirthday(card.Date{
		Time: time.Date(1972, 10, 16, 0, 0, 0, 0, time.UTC),
	})
	undated := newContact(t, "uid2", "Jane Doe", "3.0")
	freeText := newContact(t, "uid3", "Jim Doe", "4.0")
	freeText.Card.SetBirthday(card.Date{Text: "sometime in spring"})

	cal := calendar.Birthdays([]*contact.Contact{dated, undated, freeText})
	require.Len(t, cal.Children, 1)

	data, err := calendar.Encode(cal)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "BEGIN:VEVENT")
	assert.Contains(t, out, "UID:uid1-birthday")
	assert.Contains(t, out, "SUMMARY:Birthday of John Doe")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:19721016")
	assert.Contains(t, out, "RRULE:FREQ=YEARLY")
	assert.NotContains(t, out, "Jane Doe")
	assert.NotContains(t, out, "Jim Doe")
}

func TestAnniversaries(t *testing.T) {
	ct := newContact(t, "uid1", "John Doe", "3.0")
	ct.Card.SetAnniversary(card.Date{
		Time: time.Date(2005, 6, 4, 0, 0, 0, 0, time.UTC),
	})

	cal := calendar.Anniversaries([]*contact.Contact{ct})
	require.Len(t, cal.Children, 1)

	data, err := calendar.Encode(cal)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "UID:uid1-anniversary")
	assert.Contains(t, out, "SUMMARY:Anniversary of John Doe")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20050604")
}

func TestEmptyCalendarEncodes(t *testing.T) {
	cal := calendar.Birthdays(nil)
	data, err := calendar.Encode(cal)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PRODID:-//cardbook//birthday calendar//EN")
}
