package core

import "fmt"

// Rule is a consistency check across the fields of one media item.
// Check returns a message and true when the item violates the rule.
type Rule struct {
	Key         string
	Description string
	Check       func(MediaItem) (string, bool)
}

func describeFile(item MediaItem) string {
	if !item.HasFile {
		return "missing"
	}
	return fmt.Sprintf("%q", item.File)
}

func init() {
	RegisterRule(Rule{
		Key:         "available-needs-file",
		Description: `Items marked "Available" must reference a real file`,
		Check: func(item MediaItem) (string, bool) {
			if item.Status != StatusAvailable || item.HasRealFile() {
				return "", false
			}
			return fmt.Sprintf("status is %q but file is %s", StatusAvailable, describeFile(item)), true
		},
	})

	RegisterRule(Rule{
		Key:         "missing-has-no-file",
		Description: `Items marked "Missing" must not reference a file`,
		Check: func(item MediaItem) (string, bool) {
			if item.Status != StatusMissing || !item.HasRealFile() {
				return "", false
			}
			return fmt.Sprintf("status is %q but file %q is provided", StatusMissing, item.File), true
		},
	})

	RegisterRule(Rule{
		Key:         "known-status",
		Description: `Status must be "Available" or "Missing"`,
		Check: func(item MediaItem) (string, bool) {
			switch item.Status {
			case StatusAvailable, StatusMissing:
				return "", false
			}
			return fmt.Sprintf("status %q must be one of: %s, %s", item.Status, StatusAvailable, StatusMissing), true
		},
	})
}
