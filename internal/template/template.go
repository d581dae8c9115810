package template

import "strings"

const templateHead = `# name components
# every entry may contain a string or a list of strings
# format:
#   First name : name1
#   Additional :
#       - name2
#       - name3
#   Last name  : name4
Prefix     :
First name :
Additional :
Last name  :
Suffix     :

# person related information
#
# birthday
# Formats:
#   vcard 3.0 and 4.0: yyyy-mm-dd or yyyy-mm-ddTHH:MM:SS
#   vcard 4.0 only: --mm-dd or text= string value
Birthday :
# nickname
# may contain a string or a list of strings
Nickname :

# organisation
# format:
#   Organisation : company
# or
#   Organisation :
#       - company1
#       - company2
# or
#   Organisation :
#       -
#           - company
#           - unit
Organisation :

# organisation title and role
# every entry may contain a string or a list of strings
#
# title at organisation
# example usage: research scientist
Title :
# role at organisation
# example usage: project leader
Role  :

# phone numbers
# format:
#   Phone:
#       type1, type2: number
#       type3:
#           - number1
#           - number2
#       custom: number
# allowed types:
#   vcard 3.0: At least one of bbs, car, cell, fax, home, isdn, msg, modem,
#                              pager, pcs, pref, video, voice, work
#   vcard 4.0: At least one of home, work, pref, text, voice, fax, cell, video,
#                              pager, textphone
#   Alternatively you may use a single custom label (only letters).
#   But beware, that not all address book clients will support custom labels.
Phone :
    cell :
    home :

# email addresses
# format like phone numbers above
# allowed types:
#   vcard 3.0: At least one of home, internet, pref, work, x400
#   vcard 4.0: At least one of home, internet, pref, work
#   Alternatively you may use a single custom label (only letters).
Email :
    home :
    work :

# post addresses
# allowed types:
#   vcard 3.0: At least one of dom, intl, home, parcel, postal, pref, work
#   vcard 4.0: At least one of home, pref, work
#   Alternatively you may use a single custom label (only letters).
Address :
    home :
        Box      :
        Extended :
        Street   :
        Code     :
        City     :
        Region   :
        Country  :

# categories or tags
# format:
#   Categories : single category
# or
#   Categories :
#       - category1
#       - category2
Categories :

# web pages
# may contain a string or a list of strings
Webpage :
`

const templatePrivate = `
# private objects
# define your own private object names in the configuration
# they are stored with a leading "X-" before the object name in the
# vcard files
# every entry may contain a string or a list of strings
Private :
`

const templateTail = `
# notes
# may contain a string or a list of strings
# for multi-line notes use:
#   Note : |
#       line one
#       line two
Note :
`

// NewTemplate returns the commented structured text skeleton for entering a
// new contact. The configured private object names appear as empty entries
// of the Private section.
func NewTemplate(privateNames []string) string {
	var b strings.Builder
	b.WriteString(templateHead)
	if len(privateNames) > 0 {
		b.WriteString(templatePrivate)
		column := 0
		for _, name := range privateNames {
			if len(name) > column {
				column = len(name)
			}
		}
		for _, name := range privateNames {
			for _, line := range convertToYAML(name, "", 4, column, true) {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}
	b.WriteString(templateTail)
	return b.String()
}
