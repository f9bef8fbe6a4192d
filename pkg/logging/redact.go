package logging

import "strings"

// Token masks a credential for logging, keeping only its last four characters.
func Token(tok string) string {
	switch {
	case tok == "":
		return ""
	case len(tok) <= 8:
		return strings.Repeat("*", len(tok))
	}
	return "****" + tok[len(tok)-4:]
}
