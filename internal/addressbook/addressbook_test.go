package addressbook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardbook/internal/card"
	"cardbook/internal/contact"
	"cardbook/internal/query"
	"cardbook/internal/storage"
)

func writeVCard(t *testing.T, dir, uid, name string) {
	t.Helper()
	data := fmt.Sprintf(
		"BEGIN:VCARD\r\nVERSION:3.0\r\nUID:%s\r\nFN:%s\r\nEND:VCARD\r\n",
		uid, name)
	path := filepath.Join(dir, uid+".vcf")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func newBook(t *testing.T, dir string, skipUnparsable bool) *AddressBook {
	t.Helper()
	store, err := storage.NewVdirStore(dir)
	require.NoError(t, err)
	return New("test", store, card.Options{}, skipUnparsable)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeVCard(t, dir, "aaa", "John Doe")
	writeVCard(t, dir, "bbb", "Jane Doe")

	ab := newBook(t, dir, false)
	require.NoError(t, ab.Load(context.Background(), query.Any))

	contacts := ab.Contacts()
	require.Len(t, contacts, 2)
	assert.Equal(t, "John Doe", contacts[0].String())
	assert.Equal(t, "Jane Doe", contacts[1].String())
	assert.Equal(t, "test", contacts[0].AddressBook)
	assert.NotEmpty(t, contacts[0].Location)
}

func TestLoadSkipsContactsWithoutUID(t *testing.T) {
	dir := t.TempDir()
	data := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:No UID\r\nEND:VCARD\r\n"
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "nouid.vcf"), []byte(data), 0o644))

	ab := newBook(t, dir, false)
	require.NoError(t, ab.Load(context.Background(), query.Any))
	assert.Empty(t, ab.Contacts())
}

func TestLoadUnparsableRecords(t *testing.T) {
	dir := t.TempDir()
	writeVCard(t, dir, "aaa", "John Doe")
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "broken.vcf"), []byte("not a vcard"), 0o644))

	strict := newBook(t, dir, false)
	require.Error(t, strict.Load(context.Background(), query.Any))

	lenient := newBook(t, dir, true)
	require.NoError(t, lenient.Load(context.Background(), query.Any))
	assert.Len(t, lenient.Contacts(), 1)
}

func TestSearch(t *testing.T) {
	dir := t.TempDir()
	writeVCard(t, dir, "aaa", "John Doe")
	writeVCard(t, dir, "bbb", "Jane Smith")

	ab := newBook(t, dir, false)
	matches, err := ab.Search(context.Background(), query.Term("smith"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Jane Smith", matches[0].String())
}

func TestShortUIDIndex(t *testing.T) {
	tests := []struct {
		name string
		uids []string
		want map[string]string
	}{
		{"empty", nil, map[string]string{}},
		{"single", []string{"abcdef"}, map[string]string{"a": "abcdef"}},
		{
			"distinct",
			[]string{"abc", "xyz"},
			map[string]string{"a": "abc", "x": "xyz"},
		},
		{
			"shared prefix",
			[]string{"abc1", "abc2", "xyz"},
			map[string]string{"abc1": "abc1", "abc2": "abc2", "x": "xyz"},
		},
		{
			"staggered prefixes",
			[]string{"aa1", "aa2", "ab3"},
			map[string]string{"aa1": "aa1", "aa2": "aa2", "ab": "ab3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contacts := make(map[string]*contact.Contact, len(tt.uids))
			for _, uid := range tt.uids {
				c := card.New(card.Options{})
				c.SetUID(uid)
				contacts[uid] = &contact.Contact{Card: c}
			}
			index := shortUIDIndex(contacts)
			require.Len(t, index, len(tt.want))
			for short, uid := range tt.want {
				require.Contains(t, index, short)
				assert.Equal(t, uid, index[short].UID())
			}
		})
	}
}

func TestShortUID(t *testing.T) {
	dir := t.TempDir()
	writeVCard(t, dir, "abc1", "John Doe")
	writeVCard(t, dir, "abc2", "Jane Doe")
	writeVCard(t, dir, "xyz9", "Jim Doe")

	ab := newBook(t, dir, false)
	ctx := context.Background()

	short, err := ab.ShortUID(ctx, "xyz9")
	require.NoError(t, err)
	assert.Equal(t, "x", short)

	short, err = ab.ShortUID(ctx, "abc1")
	require.NoError(t, err)
	assert.Equal(t, "abc1", short)

	short, err = ab.ShortUID(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "", short)
}

func TestCollectionMergesBooks(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeVCard(t, dirA, "aaa", "John Doe")
	writeVCard(t, dirB, "bbb", "Jane Doe")
	// same UID in both books, the first book wins
	writeVCard(t, dirA, "ccc", "First Claim")
	writeVCard(t, dirB, "ccc", "Second Claim")

	col := NewCollection("all", newBook(t, dirA, false), newBook(t, dirB, false))
	ctx := context.Background()

	matches, err := col.Search(ctx, query.Any)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "First Claim", matches[2].String())

	book, err := col.Book("test")
	require.NoError(t, err)
	assert.Equal(t, "test", book.Name())

	_, err = col.Book("missing")
	require.Error(t, err)
}
