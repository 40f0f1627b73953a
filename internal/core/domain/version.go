package domain

import (
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
	"golang.org/x/mod/semver"
)

// VersionPart names the component of a version that a bump increments.
type VersionPart string

const (
	// PartMajor increments MAJOR and resets MINOR and PATCH.
	PartMajor VersionPart = "major"
	// PartMinor increments MINOR and resets PATCH.
	PartMinor VersionPart = "minor"
	// PartPatch increments PATCH.
	PartPatch VersionPart = "patch"
)

// ParseVersionPart parses a version part name. An empty string means PartPatch.
func ParseVersionPart(s string) (VersionPart, error) {
	switch VersionPart(strings.ToLower(strings.TrimSpace(s))) {
	case "", PartPatch:
		return PartPatch, nil
	case PartMinor:
		return PartMinor, nil
	case PartMajor:
		return PartMajor, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidVersionPart, fmt.Sprintf("%q", s)), "part", s)
	}
}

// Version is a MAJOR.MINOR.PATCH version number.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a strict MAJOR.MINOR.PATCH string. Surrounding whitespace is ignored.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	v := "v" + s
	if !semver.IsValid(v) || semver.Canonical(v) != v || semver.Prerelease(v) != "" {
		return Version{}, zerr.With(zerr.Wrap(ErrInvalidVersion, fmt.Sprintf("%q", s)), "version", s)
	}

	parts := strings.Split(s, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, zerr.With(zerr.Wrap(ErrInvalidVersion, err.Error()), "version", s)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Bump returns the version with part incremented.
func (v Version) Bump(part VersionPart) Version {
	switch part {
	case PartMajor:
		return Version{Major: v.Major + 1}
	case PartMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
