package message

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/gitsmart/internal/analyze"
	"github.com/mrz1836/gitsmart/internal/constants"
	"github.com/mrz1836/gitsmart/internal/domain"
)

// generalScope is used for units whose files match no category.
const generalScope = "general"

// descriptorRule maps a category to a commit type, scope, and subject noun.
type descriptorRule struct {
	category analyze.Category
	kind     domain.CommitType
	scope    string
	noun     string
}

// descriptorRules are evaluated in order; the first category present in a
// unit decides its message.
//
//nolint:gochecknoglobals // Constant-like rule table
var descriptorRules = []descriptorRule{
	{analyze.CategoryWeb, domain.CommitTypeFeat, "web", "web interface"},
	{analyze.CategoryBackend, domain.CommitTypeFeat, "api", "API endpoints"},
	{analyze.CategoryFeature, domain.CommitTypeDocs, "", "specification"},
	{analyze.CategoryDocs, domain.CommitTypeDocs, "documentation", "documentation"},
	{analyze.CategoryConfig, domain.CommitTypeChore, "config", "configuration"},
	{analyze.CategoryTest, domain.CommitTypeTest, "testing", "tests"},
}

// Descriptor writes deterministic commit messages from file paths and
// change kinds. It never emits a generic subject or an empty scope.
// It is read-only after construction and safe for concurrent use.
type Descriptor struct {
	headerLimit int
}

// DescriptorOption configures a Descriptor.
type DescriptorOption func(*Descriptor)

// WithHeaderLimit shortens derived scopes so the header prefix leaves at
// least constants.MinSubjectRoom characters for the subject under n.
func WithHeaderLimit(n int) DescriptorOption {
	return func(d *Descriptor) {
		d.headerLimit = n
	}
}

// NewDescriptor creates a Descriptor.
func NewDescriptor(opts ...DescriptorOption) *Descriptor {
	d := &Descriptor{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Describe returns the message for unit in the given style.
func (d *Descriptor) Describe(unit domain.CommitUnit, style domain.Style) domain.CommitMessage {
	rule, feature := d.match(unit)

	// Casers carry state and are not shared between goroutines.
	caser := cases.Title(language.English)
	scope := rule.scope
	noun := rule.noun
	label := caser.String(rule.noun)
	switch {
	case rule.category == analyze.CategoryFeature:
		scope = scopeSlug(feature, d.scopeLimit(rule.kind))
		noun = feature + " specification"
		label = caser.String(strings.NewReplacer("-", " ", "_", " ").Replace(feature)) + " specification"
	case rule.category == analyze.CategoryBackend:
		label = "API"
	case rule.kind == "":
		scope = generalScope
		label = "Changes"
	}
	if scope == "" {
		scope = generalScope
	}

	subject := d.subject(unit, rule, noun)
	msg := domain.CommitMessage{
		Subject: subject,
		Body:    summarize(unit, label),
	}
	if style == domain.StyleSimple {
		msg.Subject = capitalize(subject)
		return msg
	}

	msg.Type = rule.kind
	if msg.Type == "" {
		msg.Type = domain.CommitTypeFeat
	}
	msg.Scope = scope
	return msg
}

// match returns the first rule whose category occurs in unit, or a zero
// rule for uncategorized units.
func (d *Descriptor) match(unit domain.CommitUnit) (descriptorRule, string) {
	present := make(map[analyze.Category]string, len(unit.Files))
	for _, fc := range unit.Files {
		c := analyze.Categorize(fc.Path)
		if _, seen := present[c.Category]; !seen {
			present[c.Category] = c.Feature
		}
	}
	for _, rule := range descriptorRules {
		if feature, ok := present[rule.category]; ok {
			return rule, feature
		}
	}
	return descriptorRule{category: analyze.CategoryNone}, ""
}

func (d *Descriptor) subject(unit domain.CommitUnit, rule descriptorRule, noun string) string {
	verb := verbFor(unit)

	if unit.Len() == 1 {
		fc := unit.Files[0]
		if fc.Kind == domain.ChangeRenamed && fc.OldPath != "" {
			return fmt.Sprintf("rename %s to %s", path.Base(fc.OldPath), path.Base(fc.Path))
		}
		subject := verb + " " + path.Base(fc.Path)
		if IsGeneric(subject) {
			subject = verb + " file " + fc.Path
		}
		return subject
	}

	if rule.category == analyze.CategoryNone {
		return verb + " " + listNames(unit.Files)
	}

	subject := verb + " " + noun
	if dir := commonDir(unit.Paths()); dir != "" && rule.category != analyze.CategoryFeature {
		subject += " in " + dir
	}
	if IsGeneric(subject) {
		subject = verb + " " + listNames(unit.Files)
	}
	return subject
}

func verbFor(unit domain.CommitUnit) string {
	counts := unit.KindCounts()
	n := unit.Len()
	switch {
	case counts[domain.ChangeAdded] == n:
		return "add"
	case counts[domain.ChangeDeleted] == n:
		return "remove"
	case counts[domain.ChangeRenamed] == n:
		return "rename"
	}
	return "update"
}

// listNames names up to two files and counts the rest.
func listNames(files []domain.FileChange) string {
	names := make([]string, 0, 2)
	for _, fc := range files {
		if len(names) == 2 {
			break
		}
		names = append(names, path.Base(fc.Path))
	}
	switch rest := len(files) - len(names); {
	case len(names) == 1:
		return names[0]
	case rest == 0:
		return names[0] + " and " + names[1]
	case rest == 1:
		return fmt.Sprintf("%s, %s and 1 more file", names[0], names[1])
	default:
		return fmt.Sprintf("%s, %s and %d more files", names[0], names[1], rest)
	}
}

// commonDir returns the deepest directory shared by all paths, or "" when
// they only share the repository root.
func commonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	common := strings.Split(path.Dir(paths[0]), "/")
	for _, p := range paths[1:] {
		segs := strings.Split(path.Dir(p), "/")
		i := 0
		for i < len(common) && i < len(segs) && common[i] == segs[i] {
			i++
		}
		common = common[:i]
	}
	dir := strings.Join(common, "/")
	if dir == "." {
		return ""
	}
	return dir
}

// summarize renders a one-paragraph account of the unit's changes.
func summarize(unit domain.CommitUnit, label string) string {
	counts := unit.KindCounts()
	parts := make([]string, 0, 4)
	for _, kind := range []domain.ChangeKind{domain.ChangeAdded, domain.ChangeModified, domain.ChangeDeleted, domain.ChangeRenamed} {
		if n := counts[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, kind))
		}
	}

	add, del := unit.LineDelta()
	files := "files"
	if unit.Len() == 1 {
		files = "file"
	}
	body := fmt.Sprintf("%s: %d %s changed (%s), +%d/-%d lines.",
		label, unit.Len(), files, strings.Join(parts, ", "), add, del)
	if unit.Rationale != "" {
		body += "\n\n" + strings.TrimSpace(unit.Rationale)
	}
	return body
}

// scopeLimit is the longest derived scope that still leaves subject room
// after "kind(scope): ".
func (d *Descriptor) scopeLimit(kind domain.CommitType) int {
	limit := constants.MaxScopeLength
	if d.headerLimit > 0 {
		room := d.headerLimit - len(kind) - len("(): ") - constants.MinSubjectRoom
		limit = min(limit, room)
	}
	return max(limit, 1)
}

// scopeSlug lowercases s, replaces characters a scope cannot hold, and
// shortens the result to at most limit characters, preferring a '-' boundary.
func scopeSlug(s string, limit int) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '_', r == '.', r == '-':
			return unicode.ToLower(r)
		}
		return '-'
	}, strings.TrimSpace(s))
	s = strings.Trim(s, "-")
	if limit > 0 && len(s) > limit {
		cut := s[:limit]
		if i := strings.LastIndexByte(cut, '-'); i > 0 {
			cut = cut[:i]
		}
		s = strings.Trim(cut, "-._")
	}
	if s == "" {
		return generalScope
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
