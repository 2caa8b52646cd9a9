// Package segment splits element text into sentences for long-press
// translation and counts words for document metadata.
package segment

import "strings"

// Sentences does basic sentence splitting on terminal punctuation followed
// by a space. Abbreviation handling is deliberately naive: the translation
// provider tolerates slightly over-split input.
func Sentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// SentenceAt returns the sentence containing the word at the given
// whitespace-token index, or the whole text when the index is out of range.
func SentenceAt(text string, wordIndex int) string {
	sentences := Sentences(text)
	if len(sentences) == 0 {
		return strings.TrimSpace(text)
	}

	seen := 0
	for _, s := range sentences {
		n := len(strings.Fields(s))
		if wordIndex < seen+n {
			return s
		}
		seen += n
	}
	return sentences[len(sentences)-1]
}

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
