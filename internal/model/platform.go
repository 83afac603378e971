package model

import (
	"slices"
	"strings"
)

// unknownName is what String returns for the zero value of an enum.
const unknownName = "unknown"

// SocialPlatform identifies a social network whose handles are extracted.
// The values double as JSON keys in Analysis.SocialHandles.
type SocialPlatform string

// Supported platforms. Twitter and Instagram share the "@handle" shape;
// Facebook and LinkedIn are matched by profile path.
const (
	SocialPlatformUnknown   SocialPlatform = ""
	SocialPlatformTwitter   SocialPlatform = "twitter"
	SocialPlatformInstagram SocialPlatform = "instagram"
	SocialPlatformFacebook  SocialPlatform = "facebook"
	SocialPlatformLinkedIn  SocialPlatform = "linkedin"
)

// SocialPlatforms lists the known platforms in report order.
var SocialPlatforms = []SocialPlatform{
	SocialPlatformTwitter,
	SocialPlatformInstagram,
	SocialPlatformFacebook,
	SocialPlatformLinkedIn,
}

// platformAliases maps alternative names to platforms.
var platformAliases = map[string]SocialPlatform{
	"x":            SocialPlatformTwitter,
	"x.com":        SocialPlatformTwitter,
	"twitter.com":  SocialPlatformTwitter,
	"ig":           SocialPlatformInstagram,
	"fb":           SocialPlatformFacebook,
	"facebook.com": SocialPlatformFacebook,
	"linkedin.com": SocialPlatformLinkedIn,
}

func (p SocialPlatform) String() string {
	if p == SocialPlatformUnknown {
		return unknownName
	}
	return string(p)
}

// IsValid reports whether p is one of SocialPlatforms.
func (p SocialPlatform) IsValid() bool {
	return slices.Contains(SocialPlatforms, p)
}

// ParseSocialPlatform resolves a platform name or alias, ignoring case.
// Unrecognized names yield SocialPlatformUnknown.
func ParseSocialPlatform(s string) SocialPlatform {
	name := strings.ToLower(strings.TrimSpace(s))
	if p := SocialPlatform(name); p.IsValid() {
		return p
	}
	return platformAliases[name]
}

// FinancialCategory identifies a kind of financial-looking token.
type FinancialCategory string

// Financial token categories.
const (
	// FinancialUnknown represents an unknown category.
	FinancialUnknown FinancialCategory = ""
	// FinancialCreditCard matches four groups of four digits.
	FinancialCreditCard FinancialCategory = "credit_cards"
	// FinancialSSN matches ddd-dd-dddd.
	FinancialSSN FinancialCategory = "ssn"
	// FinancialBitcoin matches legacy base58 Bitcoin addresses.
	FinancialBitcoin FinancialCategory = "bitcoin"
	// FinancialEthereum matches 0x-prefixed 40 hex digit addresses.
	FinancialEthereum FinancialCategory = "ethereum"
)

// FinancialCategories lists the known categories in report order.
var FinancialCategories = []FinancialCategory{
	FinancialCreditCard,
	FinancialSSN,
	FinancialBitcoin,
	FinancialEthereum,
}

// String returns the string representation of the FinancialCategory.
func (c FinancialCategory) String() string {
	if c == FinancialUnknown {
		return unknownName
	}
	return string(c)
}

// IsValid returns true if this is a known category.
func (c FinancialCategory) IsValid() bool {
	switch c {
	case FinancialCreditCard, FinancialSSN, FinancialBitcoin, FinancialEthereum:
		return true
	default:
		return false
	}
}

// IsSensitive reports whether tokens of this category identify a person.
// Shared reports print only their count.
func (c FinancialCategory) IsSensitive() bool {
	return c == FinancialCreditCard || c == FinancialSSN
}

// ParseFinancialCategory converts a string to FinancialCategory.
func ParseFinancialCategory(s string) FinancialCategory {
	switch s {
	case "credit_cards", "credit_card":
		return FinancialCreditCard
	case "ssn":
		return FinancialSSN
	case "bitcoin":
		return FinancialBitcoin
	case "ethereum":
		return FinancialEthereum
	default:
		return FinancialUnknown
	}
}
