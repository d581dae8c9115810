// Package addressbook manages named collections of contacts on top of a
// storage backend.
package addressbook

import (
	"context"
	"sort"

	"cardbook/internal/card"
	"cardbook/internal/common/errors"
	"cardbook/internal/common/logging"
	"cardbook/internal/config"
	"cardbook/internal/contact"
	"cardbook/internal/query"
	"cardbook/internal/storage"
)

// AddressBook is one named contact collection backed by a Store. Contacts
// are loaded lazily and kept indexed by UID.
type AddressBook struct {
	name           string
	store          storage.Store
	opts           card.Options
	skipUnparsable bool

	loaded    bool
	contacts  map[string]*contact.Contact
	shortUIDs map[string]*contact.Contact
}

// New creates an address book over the given store. With skipUnparsable
// set, unparsable records are logged and counted instead of aborting the
// load.
func New(name string, store storage.Store, opts card.Options, skipUnparsable bool) *AddressBook {
	return &AddressBook{
		name:           name,
		store:          store,
		opts:           opts,
		skipUnparsable: skipUnparsable,
		contacts:       make(map[string]*contact.Contact),
	}
}

// Name returns the address book's name.
func (ab *AddressBook) Name() string {
	return ab.name
}

// Store returns the backing store.
func (ab *AddressBook) Store() storage.Store {
	return ab.store
}

// Load reads all records from the store. The query is applied to the raw
// record data before parsing; non-matching records are dropped cheaply.
// Records without a UID or with a duplicated UID are logged and skipped.
// Loading happens at most once.
func (ab *AddressBook) Load(ctx context.Context, q query.Query) error {
	if ab.loaded {
		return nil
	}
	entries, err := ab.store.List(ctx)
	if err != nil {
		return err
	}
	failed := 0
	for _, entry := range entries {
		ct, err := contact.FromBytes(entry.Data, q, ab.opts)
		if err != nil {
			logging.Error("could not parse contact", err,
				logging.String("location", entry.Location),
				logging.String("address_book", ab.name))
			if ab.skipUnparsable {
				failed++
				continue
			}
			return err
		}
		if ct == nil {
			continue
		}
		ct.AddressBook = ab.name
		ct.Location = entry.Location
		uid := ct.UID()
		if uid == "" {
			logging.Warn("contact has no UID and will not be available",
				logging.String("contact", ct.String()),
				logging.String("address_book", ab.name))
			continue
		}
		if existing, ok := ab.contacts[uid]; ok {
			logging.Warn("contacts share a UID, the former will not be available",
				logging.String("contact", ct.String()),
				logging.String("existing", existing.String()),
				logging.String("address_book", ab.name))
			continue
		}
		ab.contacts[uid] = ct
	}
	ab.loaded = true
	if failed > 0 {
		logging.Warn("some contacts could not be parsed",
			logging.Int("failed", failed),
			logging.Int("loaded", len(ab.contacts)),
			logging.String("address_book", ab.name))
	}
	return nil
}

// Search loads the address book narrowed down by the query and returns the
// contacts whose displayed content matches it, sorted by UID.
func (ab *AddressBook) Search(ctx context.Context, q query.Query) ([]*contact.Contact, error) {
	if err := ab.Load(ctx, q); err != nil {
		return nil, err
	}
	var matches []*contact.Contact
	for _, uid := range ab.uids() {
		if ct := ab.contacts[uid]; ct.Match(q) {
			matches = append(matches, ct)
		}
	}
	return matches, nil
}

// Contacts returns all loaded contacts sorted by UID.
func (ab *AddressBook) Contacts() []*contact.Contact {
	contacts := make([]*contact.Contact, 0, len(ab.contacts))
	for _, uid := range ab.uids() {
		contacts = append(contacts, ab.contacts[uid])
	}
	return contacts
}

// Get returns the loaded contact with the given UID.
func (ab *AddressBook) Get(uid string) (*contact.Contact, error) {
	if ct, ok := ab.contacts[uid]; ok {
		return ct, nil
	}
	return nil, errors.NotFoundError("contact " + uid)
}

func (ab *AddressBook) uids() []string {
	uids := make([]string, 0, len(ab.contacts))
	for uid := range ab.contacts {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

// ShortUIDs maps every contact to the shortest UID prefix that still
// identifies it uniquely within this address book.
func (ab *AddressBook) ShortUIDs(ctx context.Context) (map[string]*contact.Contact, error) {
	if ab.shortUIDs != nil {
		return ab.shortUIDs, nil
	}
	if err := ab.Load(ctx, query.Any); err != nil {
		return nil, err
	}
	ab.shortUIDs = shortUIDIndex(ab.contacts)
	return ab.shortUIDs, nil
}

// ShortUID returns the shortest prefix of the given UID that uniquely
// identifies a loaded contact, or the empty string.
func (ab *AddressBook) ShortUID(ctx context.Context, uid string) (string, error) {
	if uid == "" {
		return "", nil
	}
	shortUIDs, err := ab.ShortUIDs(ctx)
	if err != nil {
		return "", err
	}
	for length := 1; length <= len(uid); length++ {
		if _, ok := shortUIDs[uid[:length]]; ok {
			return uid[:length], nil
		}
	}
	return "", nil
}

// shortUIDIndex computes unique prefixes by walking the sorted UIDs and
// keeping one character more than the longest common prefix with either
// neighbor.
func shortUIDIndex(contacts map[string]*contact.Contact) map[string]*contact.Contact {
	index := make(map[string]*contact.Contact, len(contacts))
	uids := make([]string, 0, len(contacts))
	for uid := range contacts {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	switch len(uids) {
	case 0:
		return index
	case 1:
		index[uids[0][:1]] = contacts[uids[0]]
		return index
	}
	previous := commonPrefixLen(uids[0], uids[1])
	index[uids[0][:previous+1]] = contacts[uids[0]]
	for i := 1; i < len(uids)-1; i++ {
		next := commonPrefixLen(uids[i], uids[i+1])
		keep := previous
		if next > keep {
			keep = next
		}
		index[uids[i][:keep+1]] = contacts[uids[i]]
		previous = next
	}
	last := uids[len(uids)-1]
	index[last[:previous+1]] = contacts[last]
	return index
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// Collection is a temporary merge of several address books. Contacts with
// UIDs already claimed by an earlier book are logged and dropped.
type Collection struct {
	name   string
	books  []*AddressBook
	loaded bool

	contacts  map[string]*contact.Contact
	shortUIDs map[string]*contact.Contact
}

// NewCollection combines the given address books under one name.
func NewCollection(name string, books ...*AddressBook) *Collection {
	return &Collection{
		name:     name,
		books:    books,
		contacts: make(map[string]*contact.Contact),
	}
}

// FromConfig builds a collection of vdir address books from the
// configuration.
func FromConfig(cfg *config.Config) (*Collection, error) {
	opts := card.Options{
		Version:        cfg.PreferredVersion,
		PrivateObjects: cfg.PrivateObjects,
		LocalizeDates:  cfg.LocalizeDates,
	}
	books := make([]*AddressBook, 0, len(cfg.AddressBooks))
	for _, bookCfg := range cfg.AddressBooks {
		store, err := storage.NewVdirStore(bookCfg.Path)
		if err != nil {
			return nil, err
		}
		books = append(books, New(bookCfg.Name, store, opts, cfg.SkipUnparsable))
	}
	return NewCollection("all", books...), nil
}

// Name returns the collection's name.
func (col *Collection) Name() string {
	return col.name
}

// Book returns the wrapped address book with the given name.
func (col *Collection) Book(name string) (*AddressBook, error) {
	for _, ab := range col.books {
		if ab.Name() == name {
			return ab, nil
		}
	}
	return nil, errors.NotFoundError("address book " + name)
}

// Books returns the wrapped address books.
func (col *Collection) Books() []*AddressBook {
	return col.books
}

// Load loads every wrapped address book and merges their contacts.
func (col *Collection) Load(ctx context.Context, q query.Query) error {
	if col.loaded {
		return nil
	}
	for _, ab := range col.books {
		if err := ab.Load(ctx, q); err != nil {
			return err
		}
		for uid, ct := range ab.contacts {
			if existing, ok := col.contacts[uid]; ok {
				logging.Warn("contact not available, another card claims its UID",
					logging.String("contact", ct.String()),
					logging.String("existing", existing.String()),
					logging.String("uid", uid))
				continue
			}
			col.contacts[uid] = ct
		}
	}
	col.loaded = true
	return nil
}

// Search loads the collection narrowed down by the query and returns the
// contacts whose displayed content matches it, sorted by UID.
func (col *Collection) Search(ctx context.Context, q query.Query) ([]*contact.Contact, error) {
	if err := col.Load(ctx, q); err != nil {
		return nil, err
	}
	uids := make([]string, 0, len(col.contacts))
	for uid := range col.contacts {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	var matches []*contact.Contact
	for _, uid := range uids {
		if ct := col.contacts[uid]; ct.Match(q) {
			matches = append(matches, ct)
		}
	}
	return matches, nil
}

// ShortUIDs maps every contact to the shortest UID prefix that still
// identifies it uniquely within the whole collection.
func (col *Collection) ShortUIDs(ctx context.Context) (map[string]*contact.Contact, error) {
	if col.shortUIDs != nil {
		return col.shortUIDs, nil
	}
	if err := col.Load(ctx, query.Any); err != nil {
		return nil, err
	}
	col.shortUIDs = shortUIDIndex(col.contacts)
	return col.shortUIDs, nil
}
