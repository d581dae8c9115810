package card

import (
	"bytes"
	"regexp"

	"github.com/emersion/go-vcard"

	"cardbook/internal/common/errors"
)

// imTagRepairs maps quirky X-messaging property names written by some
// exporters to their canonical X- extension names.
var imTagRepairs = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)X-messaging/aim-All`), "X-AIM"},
	{regexp.MustCompile(`(?i)X-messaging/gadu-All`), "X-GADUGADU"},
	{regexp.MustCompile(`(?i)X-messaging/groupwise-All`), "X-GROUPWISE"},
	{regexp.MustCompile(`(?i)X-messaging/icq-All`), "X-ICQ"},
	{regexp.MustCompile(`(?i)X-messaging/xmpp-All`), "X-JABBER"},
	{regexp.MustCompile(`(?i)X-messaging/msn-All`), "X-MSN"},
	{regexp.MustCompile(`(?i)X-messaging/yahoo-All`), "X-YAHOO"},
	{regexp.MustCompile(`(?i)X-messaging/skype-All`), "X-SKYPE"},
	{regexp.MustCompile(`(?i)X-messaging/irc-All`), "X-IRC"},
	{regexp.MustCompile(`(?i)X-messaging/sip-All`), "X-SIP"},
}

func repairIMTags(data []byte) []byte {
	for _, repair := range imTagRepairs {
		data = repair.pattern.ReplaceAll(data, []byte(repair.replacement))
	}
	return data
}

// Decode parses a single vCard from its serialized form. A failed parse is
// retried once with the known quirky instant messaging property names
// repaired; if that fails too the original parse error is reported.
func Decode(data []byte, opts Options) (*Card, error) {
	vc, err := decodeRaw(data)
	if err != nil {
		repaired := repairIMTags(data)
		if !bytes.Equal(repaired, data) {
			if vc, retryErr := decodeRaw(repaired); retryErr == nil {
				return Wrap(vc, opts), nil
			}
		}
		return nil, errors.ParseError("failed to parse vCard", err)
	}
	return Wrap(vc, opts), nil
}

func decodeRaw(data []byte) (vcard.Card, error) {
	return vcard.NewDecoder(bytes.NewReader(data)).Decode()
}

// Encode serializes the card.
func (c *Card) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(c.vc); err != nil {
		return nil, errors.InternalError("failed to serialize vCard", err)
	}
	return buf.Bytes(), nil
}
