package types

// Style represents the communication style used for analysis feedback
type Style string

const (
	StyleDirect Style = "direct"
	StyleGentle Style = "gentle"
)

// AllStyles returns all valid communication styles
func AllStyles() []Style {
	return []Style{StyleDirect, StyleGentle}
}

// IsValid checks if the style is valid
func (s Style) IsValid() bool {
	switch s {
	case StyleDirect, StyleGentle:
		return true
	default:
		return false
	}
}

// String returns the string representation of the style
func (s Style) String() string {
	return string(s)
}

// Provider represents an AI backend provider
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
)

// AllProviders returns all supported AI backend providers
func AllProviders() []Provider {
	return []Provider{ProviderOpenAI, ProviderOllama, ProviderAnthropic}
}

// IsValid checks if the provider is supported
func (p Provider) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderOllama, ProviderAnthropic:
		return true
	default:
		return false
	}
}

// String returns the string representation of the provider
func (p Provider) String() string {
	return string(p)
}
