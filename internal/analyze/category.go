// Package analyze partitions a change set into commit units.
//
// The Analyzer asks a Classifier for a grouping and falls back to the
// deterministic FallbackGrouper whenever the classifier fails, answers with
// something that is not a partition, or collapses unrelated changes into a
// single oversized group.
package analyze

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// Category is the semantic bucket a path belongs to.
type Category int

// Categories in evaluation order. A path takes the first category whose
// rule matches.
const (
	CategoryFeature Category = iota
	CategoryTest
	CategoryDocs
	CategoryWeb
	CategoryBackend
	CategoryConfig
	CategoryNone
)

// String returns the category label.
func (c Category) String() string {
	switch c {
	case CategoryFeature:
		return "feature"
	case CategoryTest:
		return "test"
	case CategoryDocs:
		return "docs"
	case CategoryWeb:
		return "web"
	case CategoryBackend:
		return "backend"
	case CategoryConfig:
		return "config"
	case CategoryNone:
		return "none"
	}
	return "unknown"
}

// Scope returns the conventional scope used for units of this category.
// Feature units use the feature name instead.
func (c Category) Scope() string {
	switch c {
	case CategoryTest:
		return "testing"
	case CategoryDocs:
		return "documentation"
	case CategoryWeb:
		return "web"
	case CategoryBackend:
		return "api"
	case CategoryConfig:
		return "config"
	case CategoryFeature, CategoryNone:
		return ""
	}
	return ""
}

// Classification is the result of categorizing one path.
type Classification struct {
	Category Category

	// Feature is the feature directory name for CategoryFeature.
	Feature string

	// FeatureRoot is the path of the feature directory, e.g. "specs/auth".
	FeatureRoot string
}

// featureDirs are directory names whose children denote named features.
//
//nolint:gochecknoglobals // Constant-like lookup table
var featureDirs = map[string]bool{
	"specs": true,
}

type categoryRule struct {
	category Category
	patterns []string
}

// categoryRules maps path shapes to categories. Order matters.
//
//nolint:gochecknoglobals // Constant-like rule table
var categoryRules = []categoryRule{
	{CategoryTest, []string{
		"**/*_test.go",
		"**/*_test.py",
		"**/test_*.py",
		"**/*.{test,spec}.{js,jsx,ts,tsx,mjs,cjs}",
		"**/{test,tests,__tests__,testdata,e2e}/**",
	}},
	{CategoryDocs, []string{
		"**/*.{md,mdx,rst,adoc}",
		"**/{docs,doc,documentation}/**",
		"**/{README,CHANGELOG,CONTRIBUTING,LICENSE,NOTICE,AUTHORS}*",
	}},
	{CategoryWeb, []string{
		"{web,frontend,client,ui,www}/**",
		"**/{components,pages,static,public,assets,styles}/**",
		"**/*.{js,jsx,ts,tsx,mjs,cjs,vue,svelte,astro,html,htm,css,scss,sass,less}",
	}},
	{CategoryBackend, []string{
		"{api,backend,server,service,services,internal,pkg,cmd,src}/**",
		"**/{api,handlers,controllers,models,routes,service,services}/**",
		"**/*.{go,py,rb,java,kt,scala,rs,php,cs,ex,exs,c,cc,cpp,h,hpp,swift}",
	}},
	{CategoryConfig, []string{
		"**/*.{yaml,yml,json,toml,ini,cfg,conf,env,lock,properties}",
		"**/{Makefile,Dockerfile,Dockerfile.*,Procfile,Taskfile,go.mod,go.sum,.gitignore,.gitattributes,.editorconfig,.dockerignore}",
		"**/.*rc",
		"**/.env*",
		"**/requirements*.txt",
		"{.github,.gitlab,.circleci,deploy,deployments,config,configs}/**",
	}},
}

// Categorize returns the semantic category of a repository-relative path.
func Categorize(p string) Classification {
	p = strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "./")

	if name, root, ok := featureOf(p); ok {
		return Classification{Category: CategoryFeature, Feature: name, FeatureRoot: root}
	}

	for _, rule := range categoryRules {
		if matchAny(rule.patterns, p) {
			return Classification{Category: rule.category}
		}
	}
	return Classification{Category: CategoryNone}
}

// featureOf reports whether p lives below a named feature directory such
// as specs/<feature>/..., at any depth.
func featureOf(p string) (name, root string, ok bool) {
	segs := strings.Split(p, "/")
	for i := 0; i+2 < len(segs); i++ {
		if featureDirs[segs[i]] && segs[i+1] != "" {
			return segs[i+1], strings.Join(segs[:i+2], "/"), true
		}
	}
	return "", "", false
}

func matchAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, p); err == nil && ok {
			return true
		}
	}
	return false
}

// parentDir returns the slash-separated parent directory of p, "." for
// root-level files.
func parentDir(p string) string {
	return path.Dir(p)
}
