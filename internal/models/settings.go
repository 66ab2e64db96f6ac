package models

// FontSize is the single reader preference the site persists.
type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

// Valid reports whether the value is one of the three supported sizes.
func (f FontSize) Valid() bool {
	switch f {
	case FontSmall, FontMedium, FontLarge:
		return true
	}
	return false
}

// UserSettings is stored client-side in the settings cookie, never remotely.
type UserSettings struct {
	FontSize FontSize `json:"fontSize"`
}

// DefaultSettings returns the settings used when no cookie is present or the
// stored value is unreadable.
func DefaultSettings() UserSettings {
	return UserSettings{FontSize: FontMedium}
}
