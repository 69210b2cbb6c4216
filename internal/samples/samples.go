package samples

import (
	"fmt"
	"sort"
	"strings"
)

// Sample is a named simulated paste.
type Sample struct {
	Name        string
	Description string
	Text        string
}

var all = []Sample{
	{
		Name:        "credential-dump",
		Description: "Credential dump with emails and phone numbers",
		Text: "username: johndoe | email: john.doe@example.com | phone: 9876543210\n" +
			"username: janesmith | email: jane.smith@corp.org | phone: +91-98765-43210\n" +
			"admin contact: support@helpdesk.in | hotline: 080-23456789",
	},
	{
		Name:        "identity-leak",
		Description: "Identity leak with Aadhaar, SSN and an address",
		Text: "Name: Robert Brown | Aadhaar: 3456 7890 1234 | DOB: 12/03/1990\n" +
			"SSN: 123-45-6789 | Email: robert.brown@mail.com | Phone: +1 (800) 555-0199\n" +
			"Address: 12, Greenwood Avenue, Banjara Hills",
	},
	{
		Name:        "system-log",
		Description: "System log whose numbers are not phone numbers",
		Text: "ERROR [2024-01-15 10:23:45] Transaction failed. Error code: 9988776655\n" +
			"Exception ref: 1122334455 at batch session. Request ID: 5566778899\n" +
			"Contact support@helpdesk.in to resolve.",
	},
	{
		Name:        "personal-context",
		Description: "Personal letter with named people",
		Text: "Dear John Doe, residing at 45B, MG Road, Jubilee Hills, Hyderabad. " +
			"Email: john.doe@example.com | Phone: +91-9876543210 | Aadhaar: 2345 6789 0123 | SSN: 321-45-6789. " +
			"Colleague Jane Smith: jane.smith@company.org | +1 (800) 555-0199.",
	},
	{
		Name:        "log-context",
		Description: "Error log with phone-shaped codes",
		Text: "Error code: 9876543210 occurred during transaction processing. " +
			"Exception ref: 080-23456789 at session batch ID 1234567. Contact support@helpdesk.in for status.",
	},
	{
		Name:        "mixed",
		Description: "Log lines mixed with a personal message",
		Text: "Dear Alice Johnson, account alert triggered. Error code 9988776655 logged at session start. " +
			"Call Alice at +1 (800) 555-0199 or email alice@domain.com. Home: 12, Greenwood Avenue, Banjara Hills.",
	},
	{
		Name:        "gov-ids",
		Description: "Government identifiers for one person",
		Text: "Identity verification for Robert Brown. Aadhaar: 3456 7890 1234. SSN: 123-45-6789 (US tax). " +
			"Email: robert.brown@mail.com | Phone: +91-9988776655.",
	},
}

// List returns all samples sorted by name.
func List() []Sample {
	out := make([]Sample, len(all))
	copy(out, all)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sample names sorted.
func Names() []string {
	var names []string
	for _, s := range List() {
		names = append(names, s.Name)
	}
	return names
}

// Get looks up a sample by name. Spaces and underscores are accepted in
// place of dashes.
func Get(name string) (Sample, error) {
	key := strings.NewReplacer(" ", "-", "_", "-").Replace(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range all {
		if s.Name == key {
			return s, nil
		}
	}
	return Sample{}, fmt.Errorf("unknown sample %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Source is the report source label for a sample.
func (s Sample) Source() string { return "sample:" + s.Name }
