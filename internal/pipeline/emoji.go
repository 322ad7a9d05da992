package pipeline

import "strings"

// emojiKeywords maps lowercase substrings of a permit name to its listing
// emoji, checked in order. Italian and English keywords both match so
// translated names classify the same way.
var emojiKeywords = []struct {
	keywords []string
	emoji    string
}{
	{[]string{"studio", "study"}, "📖"},
	{[]string{"lavoro", "work"}, "💼"},
	{[]string{"protezione", "protection", "asilo", "asylum"}, "🛡️"},
	{[]string{"famiglia", "familiari", "family"}, "👨‍👩‍👧‍👦"},
	{[]string{"medic", "cure", "health"}, "🏥"},
	{[]string{"soggiornanti", "lungo periodo", "long-term"}, "🏠"},
	{[]string{"minore", "minori", "minor"}, "👶"},
	{[]string{"calamit", "disaster"}, "🌊"},
	{[]string{"attesa occupazione", "job seeking", "awaiting employment"}, "🔍"},
}

const defaultEmoji = "📄"

// EmojiFor picks the listing emoji for a permit name.
func EmojiFor(tipo string) string {
	lower := strings.ToLower(tipo)
	for _, group := range emojiKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.emoji
			}
		}
	}
	return defaultEmoji
}
