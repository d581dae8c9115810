package card

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/emersion/go-vcard"

	"cardbook/internal/common/errors"
)

// Standard TYPE vocabularies per RFC 2426 (3.0) and RFC 6350 (4.0).
var (
	phoneTypesV3 = []string{"bbs", "car", "cell", "fax", "home", "isdn", "msg",
		"modem", "pager", "pcs", "video", "voice", "work"}
	emailTypesV3   = []string{"home", "internet", "work", "x400"}
	addressTypesV3 = []string{"dom", "intl", "home", "parcel", "postal", "work"}

	phoneTypesV4 = []string{"text", "voice", "fax", "cell", "video", "pager",
		"textphone", "home", "work"}
	emailTypesV4   = []string{"home", "internet", "work"}
	addressTypesV4 = []string{"home", "work"}
)

var prefWeightPattern = regexp.MustCompile(`^pref=\d{1,2}$`)

// parseTypeValue parses the TYPE tokens of phone numbers, email and post
// addresses. Tokens that case-insensitively match the supported vocabulary
// keep their original case. A bare "pref" token or a "pref=NN" token adds to
// the preference weight. Unknown tokens become custom labels: an explicit
// "x-" prefixed token is stored as a standard type verbatim with the prefix
// stripped for the label, while a bare word gets an "X-" prefixed standard
// type generated for it.
func parseTypeValue(types []string, supported []string) (standard, custom []string, pref int) {
	for _, typ := range types {
		typ = strings.TrimSpace(typ)
		if typ == "" {
			continue
		}
		lower := strings.ToLower(typ)
		switch {
		case containsFold(supported, lower):
			standard = append(standard, typ)
		case lower == "pref":
			pref++
		case prefWeightPattern.MatchString(lower):
			weight, _ := strconv.Atoi(strings.SplitN(typ, "=", 2)[1])
			pref += weight
		case strings.HasPrefix(lower, "x-"):
			custom = append(custom, typ[2:])
			standard = append(standard, typ)
		default:
			custom = append(custom, typ)
			standard = append(standard, "X-"+typ)
		}
	}
	return standard, custom, pref
}

// checkTypeValue applies the policy shared by all structured fields: an
// occurrence without any type information cannot be stored, and at most one
// custom label is permitted.
func checkTypeValue(field, value string, standard, custom []string, pref int) error {
	if len(standard) == 0 && len(custom) == 0 && pref == 0 {
		return errors.ValidationErrorf(field, "label for %s is missing", value)
	}
	if len(custom) > 1 {
		return errors.ValidationErrorf(field, "%s got more than one custom label: %s",
			value, strings.Join(custom, ", "))
	}
	return nil
}

// typesFor reconstructs the list of type labels of a phone number, email or
// post address occurrence. A custom label attached through the shared group
// takes priority, then the TYPE tokens (with unknown "x-" tokens
// un-prefixed unless the label already covers them), then the preference:
// the PREF parameter of vCard 4.0 or a bare "pref" TYPE token. An occurrence
// without any recognized type yields the field's default type.
func (c *Card) typesFor(f *vcard.Field, defaultType string) []string {
	var types []string
	if f.Group != "" {
		if label := strings.TrimSpace(c.groupLabel(f.Group)); label != "" {
			types = append(types, label)
		}
	}
	for _, typ := range f.Params["TYPE"] {
		typ = strings.TrimSpace(typ)
		if typ == "" || strings.EqualFold(typ, "pref") {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(typ), "x-") {
			types = append(types, typ)
		} else if !containsFold(types, strings.ToLower(typ[2:])) {
			// add the x-custom type in case it is not already covered by the
			// group label above, but strip the x- prefix
			types = append(types, typ[2:])
		}
	}
	if weight, err := strconv.Atoi(f.Params.Get("PREF")); err == nil {
		types = append(types, "pref="+strconv.Itoa(weight))
	} else {
		for _, typ := range f.Params["TYPE"] {
			if strings.EqualFold(strings.TrimSpace(typ), "pref") && !contains(types, "pref") {
				types = append(types, "pref")
			}
		}
	}
	if len(types) > 0 {
		return types
	}
	return []string{defaultType}
}

// typeKey joins a list of type labels into the canonical map key used by the
// structured field getters.
func typeKey(types []string) string {
	return strings.Join(types, ", ")
}

func (c *Card) phoneTypes() []string {
	if c.Version() == Version4 {
		return phoneTypesV4
	}
	return phoneTypesV3
}

func (c *Card) emailTypes() []string {
	if c.Version() == Version4 {
		return emailTypesV4
	}
	return emailTypesV3
}

func (c *Card) addressTypes() []string {
	if c.Version() == Version4 {
		return addressTypesV4
	}
	return addressTypesV3
}

func contains(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}

func containsFold(list []string, lower string) bool {
	for _, entry := range list {
		if strings.ToLower(entry) == lower {
			return true
		}
	}
	return false
}
