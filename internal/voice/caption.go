package voice

import "strings"

// EmptyPlaceholder stands in for a missing title or caption.
const EmptyPlaceholder = "Пусто"

// SplitCaption turns a voice caption into title and description. Without a
// caption both are the placeholder; otherwise the first line is the title and
// the remaining lines, possibly none, are the description.
func SplitCaption(caption string) (title, description string) {
	if caption == "" {
		return EmptyPlaceholder, EmptyPlaceholder
	}
	lines := strings.Split(caption, "\n")
	return lines[0], strings.Join(lines[1:], "\n")
}

// SplitEdit turns an edit reply into title and description, substituting the
// placeholder for whichever part is empty.
func SplitEdit(text string) (title, description string) {
	lines := strings.Split(text, "\n")

	title = lines[0]
	if title == "" {
		title = EmptyPlaceholder
	}
	description = strings.Join(lines[1:], "\n")
	if description == "" {
		description = EmptyPlaceholder
	}
	return title, description
}

// Matches reports whether query occurs in the title or caption, ignoring case.
func Matches(title, caption, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title), q) || strings.Contains(strings.ToLower(caption), q)
}
