package database

import "strings"

// LikeEscape is appended after every LIKE ? placeholder filled by
// ContainsPattern. '!' needs no extra quoting in any supported dialect.
const LikeEscape = ` ESCAPE '!'`

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ContainsPattern builds a case-insensitive substring pattern for LIKE with
// the wildcard characters of s escaped. Compare it against LOWER(column).
func ContainsPattern(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(s)) + "%"
}
