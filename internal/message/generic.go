package message

import (
	"strings"
	"unicode"
)

// genericSubjects are placeholder subjects that say nothing about a change.
//
//nolint:gochecknoglobals // Constant-like lookup table
var genericSubjects = map[string]bool{
	"update":           true,
	"updates":          true,
	"update code":      true,
	"update file":      true,
	"update files":     true,
	"updated code":     true,
	"updated files":    true,
	"change":           true,
	"changes":          true,
	"code changes":     true,
	"minor changes":    true,
	"various changes":  true,
	"fix":              true,
	"fixes":            true,
	"fix stuff":        true,
	"fix things":       true,
	"fix bug":          true,
	"fix bugs":         true,
	"misc":             true,
	"stuff":            true,
	"wip":              true,
	"work in progress": true,
	"cleanup":          true,
	"refactor code":    true,
	"commit":           true,
}

// IsGeneric reports whether subject is a known placeholder such as
// "update code". Case, surrounding punctuation, and a conventional prefix
// are ignored.
func IsGeneric(subject string) bool {
	s := strings.ToLower(strings.TrimSpace(subject))
	if i := strings.Index(s, ": "); i >= 0 {
		s = s[i+2:]
	}
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	s = strings.Join(strings.Fields(s), " ")
	return s == "" || genericSubjects[s]
}
