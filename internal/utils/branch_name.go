package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxBranchNameByteLength is the longest branch name accepted.
// Git refs have a max length of 256 bytes, minus "refs/remotes/" and a short remote name.
const MaxBranchNameByteLength = 234

var (
	// invalidBranchCharRegex matches characters git does not allow in ref names
	invalidBranchCharRegex = regexp.MustCompile(`[\x00-\x20\x7f~^:?*\[\\]`)

	// invalidBranchSequenceRegex matches sequences git does not allow anywhere in a ref name
	invalidBranchSequenceRegex = regexp.MustCompile(`\.\.|@\{|//|/\.|\.lock/`)
)

// ValidateBranchName checks a short branch name against git's ref naming
// rules (see git-check-ref-format).
func ValidateBranchName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("branch name is empty")
	case name == "@" || name == "HEAD":
		return fmt.Errorf("%q is not a branch name", name)
	case len(name) > MaxBranchNameByteLength:
		return fmt.Errorf("branch name is longer than %d bytes", MaxBranchNameByteLength)
	case strings.HasPrefix(name, "-"):
		return fmt.Errorf("branch name %q starts with a dash", name)
	case strings.HasPrefix(name, "/") || strings.HasPrefix(name, "."):
		return fmt.Errorf("branch name %q starts with %q", name, name[:1])
	case strings.HasSuffix(name, "/") || strings.HasSuffix(name, "."):
		return fmt.Errorf("branch name %q ends with %q", name, name[len(name)-1:])
	case strings.HasSuffix(name, ".lock"):
		return fmt.Errorf("branch name %q ends with .lock", name)
	}

	if loc := invalidBranchCharRegex.FindStringIndex(name); loc != nil {
		return fmt.Errorf("branch name %q contains invalid character %q", name, name[loc[0]:loc[1]])
	}
	if seq := invalidBranchSequenceRegex.FindString(name); seq != "" {
		return fmt.Errorf("branch name %q contains %q", name, seq)
	}
	return nil
}
