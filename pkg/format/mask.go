package format

// MaskedPlaceholder is printed instead of values too short to partially reveal.
const MaskedPlaceholder = "***"

const maskVisibleRunes = 4

// MaskSecret hides the middle of a secret, keeping the first and last four characters.
func MaskSecret(value string) string {
	runes := []rune(value)
	if len(runes) <= 2*maskVisibleRunes {
		return MaskedPlaceholder
	}
	return string(runes[:maskVisibleRunes]) + "..." + string(runes[len(runes)-maskVisibleRunes:])
}
