package integrity

import "github.com/google/uuid"

// ChannelSettings holds the validation behavior flags of one sales channel.
type ChannelSettings struct {
	Active                       bool
	SplitStreetEnabled           bool
	AllowNativeOverwrite         bool
	ExistingCustomerCheckEnabled bool
	PayPalCheckEnabled           bool
	ImportCheckEnabled           bool
	Language                     string
}

// DefaultChannelSettings returns the settings used when a channel has no
// explicit configuration.
func DefaultChannelSettings() ChannelSettings {
	return ChannelSettings{
		Active:             true,
		SplitStreetEnabled: true,
		Language:           "de",
	}
}

// SettingsProvider resolves validation settings per sales channel.
type SettingsProvider interface {
	ForChannel(salesChannelID uuid.UUID) ChannelSettings
}

// StaticSettings is a map-backed SettingsProvider built once at startup.
type StaticSettings struct {
	Defaults ChannelSettings
	Channels map[uuid.UUID]ChannelSettings
}

// NewStaticSettings creates a provider with the given defaults.
func NewStaticSettings(defaults ChannelSettings) *StaticSettings {
	return &StaticSettings{
		Defaults: defaults,
		Channels: make(map[uuid.UUID]ChannelSettings),
	}
}

// ForChannel returns the channel's settings, falling back to the defaults.
func (s *StaticSettings) ForChannel(salesChannelID uuid.UUID) ChannelSettings {
	if settings, ok := s.Channels[salesChannelID]; ok {
		return settings
	}
	return s.Defaults
}

// Ensure StaticSettings implements SettingsProvider
var _ SettingsProvider = (*StaticSettings)(nil)
