// Package contact ties a card to the address book it lives in and provides
// the higher level lifecycle operations: creating contacts from structured
// text, editing them through copies and persisting them.
package contact

import (
	"context"
	"crypto/rand"

	"cardbook/internal/card"
	"cardbook/internal/common/errors"
	"cardbook/internal/query"
	"cardbook/internal/storage"
	"cardbook/internal/template"
)

// Contact is one card together with its storage coordinates.
type Contact struct {
	Card *card.Card
	// AddressBook names the owning address book, empty for unattached
	// contacts.
	AddressBook string
	// Location describes where the contact is stored, for log output.
	Location string
}

const uidAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const uidLength = 36

// RandomUID generates a new contact identifier, 36 random lowercase
// letters and digits.
func RandomUID() string {
	buf := make([]byte, uidLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = uidAlphabet[int(b)%len(uidAlphabet)]
	}
	return string(buf)
}

// New creates an empty contact with a freshly generated UID.
func New(opts card.Options) *Contact {
	c := card.New(opts)
	c.SetUID(RandomUID())
	return &Contact{Card: c}
}

// FromBytes parses a serialized vCard into a contact. The query is applied
// to the raw input first: a non-matching vCard returns nil without being
// parsed.
func FromBytes(data []byte, q query.Query, opts card.Options) (*Contact, error) {
	if q != nil && !q.Match(string(data)) {
		return nil, nil
	}
	c, err := card.Decode(data, opts)
	if err != nil {
		return nil, err
	}
	return &Contact{Card: c}, nil
}

// FromTemplate creates a new contact from a structured text document.
func FromTemplate(input []byte, opts card.Options) (*Contact, error) {
	c := card.New(opts)
	if err := template.Update(c, input); err != nil {
		return nil, err
	}
	return &Contact{Card: c}, nil
}

// UID returns the contact's unique identifier, empty when none is set yet.
func (ct *Contact) UID() string {
	return ct.Card.UID()
}

func (ct *Contact) String() string {
	return ct.Card.FormattedName()
}

// CloneWithUpdate applies a structured text document to a deep copy of the
// contact. The receiver stays untouched, also when the update fails.
func (ct *Contact) CloneWithUpdate(input []byte) (*Contact, error) {
	clone := ct.Card.Clone()
	if err := template.Update(clone, input); err != nil {
		return nil, err
	}
	return &Contact{
		Card:        clone,
		AddressBook: ct.AddressBook,
		Location:    ct.Location,
	}, nil
}

// Template renders the contact as an editable structured text document.
func (ct *Contact) Template() string {
	return template.Render(ct.Card)
}

// Pretty renders the contact for display.
func (ct *Contact) Pretty(verbose bool) string {
	return template.Pretty(ct.Card, verbose, ct.AddressBook)
}

// Equal compares two contacts by their displayed content, ignoring UIDs,
// revision timestamps and storage coordinates.
func (ct *Contact) Equal(other *Contact) bool {
	return template.Pretty(ct.Card, false, "") == template.Pretty(other.Card, false, "")
}

// Match reports whether the contact's displayed content matches the query.
func (ct *Contact) Match(q query.Query) bool {
	return q.Match(ct.Pretty(true))
}

// Write persists the contact into the given store, generating a UID first
// when it has none.
func (ct *Contact) Write(ctx context.Context, store storage.Store, overwrite bool) error {
	if ct.UID() == "" {
		ct.Card.SetUID(RandomUID())
	}
	data, err := ct.Card.Encode()
	if err != nil {
		return err
	}
	if err := store.Put(ctx, ct.UID(), data, overwrite); err != nil {
		return err
	}
	return nil
}

// Delete removes the contact from the given store.
func (ct *Contact) Delete(ctx context.Context, store storage.Store) error {
	uid := ct.UID()
	if uid == "" {
		return errors.ValidationError("uid", "contact has no UID")
	}
	return store.Delete(ctx, uid)
}
