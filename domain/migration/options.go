package migration

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/helixml/mt2mw/domain/wiki"
)

// DefaultMainPageTitle is the target page naming the wiki homepage.
const DefaultMainPageTitle = "MediaWiki:Mainpage"

// PublishOptions controls what the publisher writes. It is read once before
// a run and never changes during it.
type PublishOptions struct {
	CopyPages     bool
	CopyFiles     bool
	ShowSubpages  bool
	ShowFiles     bool
	Hierarchical  bool
	SkipPatterns  []string
	MainPageTitle string
}

// DefaultPublishOptions returns options that copy everything with
// hierarchical titles.
func DefaultPublishOptions() PublishOptions {
	return PublishOptions{
		CopyPages:     true,
		CopyFiles:     true,
		ShowSubpages:  true,
		ShowFiles:     true,
		Hierarchical:  true,
		MainPageTitle: DefaultMainPageTitle,
	}
}

// Validate checks that every skip pattern is a well-formed glob.
func (o PublishOptions) Validate() error {
	for _, pattern := range o.SkipPatterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid skip pattern %q", pattern)
		}
	}
	return nil
}

// Skips reports whether the page at path matches a skip pattern.
func (o PublishOptions) Skips(path string) bool {
	for _, pattern := range o.SkipPatterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// SourceTitle returns the name a page is written under before sanitization:
// its path in hierarchical mode, its title otherwise.
func (o PublishOptions) SourceTitle(page wiki.Page) string {
	if o.Hierarchical && page.Path() != "" {
		return page.Path()
	}
	return page.Title()
}

// TargetTitle returns the sanitized target title of page.
func (o PublishOptions) TargetTitle(page wiki.Page) string {
	return wiki.SanitizeTitle(o.SourceTitle(page))
}

// MainPageTarget returns the title of the homepage marker page.
func (o PublishOptions) MainPageTarget() string {
	if o.MainPageTitle == "" {
		return DefaultMainPageTitle
	}
	return o.MainPageTitle
}
