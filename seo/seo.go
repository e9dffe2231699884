// Package seo scores a post against a fixed table of on-page SEO rules.
package seo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Overall is the verdict derived from all checks.
type Overall string

const (
	OverallGood Overall = "good"
	OverallOK   Overall = "ok"
	OverallPoor Overall = "poor"
)

// Check ids in evaluation order.
const (
	CheckKeywordInTitle          = "focus-keyword-in-title"
	CheckKeywordInSlug           = "focus-keyword-in-slug"
	CheckKeywordInExcerpt        = "focus-keyword-in-excerpt"
	CheckKeywordInH2             = "focus-keyword-in-h2"
	CheckKeywordInFirstParagraph = "focus-keyword-in-first-paragraph"
	CheckKeywordDensity          = "focus-keyword-density"
	CheckTitleLength             = "title-length"
	CheckMetaDescriptionLength   = "meta-description-length"
	CheckSlugLength              = "slug-length"
	CheckContentLength           = "content-length"
	CheckHeadingHierarchy        = "heading-hierarchy"
	CheckImageAltText            = "image-alt-text"
	CheckInternalLinks           = "internal-links"
	CheckExternalLinks           = "external-links"
	CheckParagraphLength         = "paragraph-length"
	CheckCoverImage              = "cover-image"
	CheckReadability             = "readability-score"
)

// Check is one evaluated rule.
type Check struct {
	ID      string `json:"id"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Result is the scored outcome for a post.
type Result struct {
	Overall Overall `json:"overall"`
	Checks  []Check `json:"checks"`
}

// Counts returns the number of failing and warning checks.
func (r Result) Counts() (fails, warns int) {
	return count(r.Checks)
}

// Input is the slice of a post the scorer looks at.
type Input struct {
	Title           string
	Slug            string
	Excerpt         string
	MetaTitle       string
	MetaDescription string
	FocusKeyword    string
	ContentText     string
	ContentHTML     string
	WordCount       int
	CoverImageURL   string
}

var (
	reH2          = regexp.MustCompile(`(?is)<h2[^>]*>(.*?)</h2>`)
	reHeadingTag  = regexp.MustCompile(`(?i)<h([2-6])[^>]*>`)
	reImg         = regexp.MustCompile(`(?i)<img[^>]*>`)
	reInternal    = regexp.MustCompile(`(?i)href=["']/[^"']*["']`)
	reExternal    = regexp.MustCompile(`(?i)href=["']https?://[^"']*["']`)
	reParaClose   = regexp.MustCompile(`(?i)</p>`)
	reTag         = regexp.MustCompile(`<[^>]+>`)
	reSentenceEnd = regexp.MustCompile(`[.!?]+`)
	reSpaces      = regexp.MustCompile(`\s+`)
)

// Score evaluates every rule against in. It never fails: missing fields
// map to a warn or fail outcome, or skip rules that need them.
func Score(in Input) Result {
	var checks []Check
	add := func(id string, status Status, format string, args ...any) {
		checks = append(checks, Check{ID: id, Status: status, Message: fmt.Sprintf(format, args...)})
	}

	keyword := strings.ToLower(strings.TrimSpace(in.FocusKeyword))
	title := strings.ToLower(in.Title)
	slug := strings.ToLower(in.Slug)
	description := in.MetaDescription
	if description == "" {
		description = in.Excerpt
	}
	lowerDescription := strings.ToLower(description)
	text := strings.ToLower(in.ContentText)
	htmlBody := in.ContentHTML
	hasText := text != ""
	textWords := strings.Fields(text)

	// Keyword placement.
	switch {
	case keyword == "":
		add(CheckKeywordInTitle, StatusWarn, "No focus keyword set")
	case strings.Contains(title, keyword):
		add(CheckKeywordInTitle, StatusPass, "Focus keyword appears in title")
	default:
		add(CheckKeywordInTitle, StatusFail, "Focus keyword not found in title")
	}

	switch {
	case keyword == "":
		add(CheckKeywordInSlug, StatusWarn, "No focus keyword set")
	case strings.Contains(slug, reSpaces.ReplaceAllString(keyword, "-")):
		add(CheckKeywordInSlug, StatusPass, "Focus keyword appears in URL slug")
	default:
		add(CheckKeywordInSlug, StatusFail, "Focus keyword not found in URL slug")
	}

	switch {
	case keyword == "":
		add(CheckKeywordInExcerpt, StatusWarn, "No focus keyword set")
	case strings.Contains(lowerDescription, keyword):
		add(CheckKeywordInExcerpt, StatusPass, "Focus keyword appears in meta description")
	default:
		add(CheckKeywordInExcerpt, StatusFail, "Focus keyword not found in meta description")
	}

	if keyword != "" {
		found := false
		for _, m := range reH2.FindAllStringSubmatch(htmlBody, -1) {
			if strings.Contains(strings.ToLower(reTag.ReplaceAllString(m[1], "")), keyword) {
				found = true
				break
			}
		}
		if found {
			add(CheckKeywordInH2, StatusPass, "Focus keyword found in a subheading")
		} else {
			add(CheckKeywordInH2, StatusWarn, "Focus keyword not found in any H2 subheading")
		}
	}

	if keyword != "" && hasText {
		lead := textWords
		if len(lead) > 150 {
			lead = lead[:150]
		}
		if strings.Contains(strings.Join(lead, " "), keyword) {
			add(CheckKeywordInFirstParagraph, StatusPass, "Focus keyword appears early in content")
		} else {
			add(CheckKeywordInFirstParagraph, StatusWarn, "Focus keyword not found in the first paragraph")
		}

		density := 0.0
		if len(textWords) > 0 {
			density = float64(strings.Count(text, keyword)) / float64(len(textWords)) * 100
		}
		switch {
		case density >= 0.5 && density <= 2.5:
			add(CheckKeywordDensity, StatusPass, "Keyword density is %.1f%% (ideal)", density)
		case density < 0.5:
			add(CheckKeywordDensity, StatusWarn, "Keyword density is %.1f%% (too low, aim for 0.5-2.5%%)", density)
		default:
			add(CheckKeywordDensity, StatusWarn, "Keyword density is %.1f%% (too high, aim for 0.5-2.5%%)", density)
		}
	}

	// Lengths.
	metaTitle := in.MetaTitle
	if metaTitle == "" {
		metaTitle = in.Title
	}
	switch n := utf8.RuneCountInString(metaTitle); {
	case n >= 50 && n <= 60:
		add(CheckTitleLength, StatusPass, "Title is %d characters (ideal)", n)
	case n < 30:
		add(CheckTitleLength, StatusFail, "Title is %d characters (too short, aim for 50-60)", n)
	case n > 70:
		add(CheckTitleLength, StatusWarn, "Title is %d characters (too long, aim for 50-60)", n)
	default:
		add(CheckTitleLength, StatusWarn, "Title is %d characters (aim for 50-60)", n)
	}

	switch n := utf8.RuneCountInString(description); {
	case n >= 150 && n <= 160:
		add(CheckMetaDescriptionLength, StatusPass, "Meta description is %d characters (ideal)", n)
	case n < 120:
		add(CheckMetaDescriptionLength, StatusWarn, "Meta description is %d characters (too short, aim for 150-160)", n)
	case n > 170:
		add(CheckMetaDescriptionLength, StatusWarn, "Meta description is %d characters (too long, may be truncated)", n)
	default:
		add(CheckMetaDescriptionLength, StatusPass, "Meta description is %d characters", n)
	}

	if n := utf8.RuneCountInString(in.Slug); n <= 75 {
		add(CheckSlugLength, StatusPass, "URL slug is %d characters", n)
	} else {
		add(CheckSlugLength, StatusWarn, "URL slug is %d characters (should be under 75)", n)
	}

	if in.WordCount >= 300 {
		add(CheckContentLength, StatusPass, "Content is %d words", in.WordCount)
	} else {
		add(CheckContentLength, StatusFail, "Content is only %d words (aim for 300+)", in.WordCount)
	}

	// Structure of the rendered HTML.
	levels := headingLevels(htmlBody)
	switch {
	case len(levels) == 0:
		add(CheckHeadingHierarchy, StatusWarn, "No subheadings found, add H2s to structure content")
	case skipsLevel(levels):
		add(CheckHeadingHierarchy, StatusWarn, "Heading levels are skipped (e.g., H2 → H4)")
	default:
		add(CheckHeadingHierarchy, StatusPass, "Heading hierarchy is correct")
	}

	images := reImg.FindAllString(htmlBody, -1)
	missingAlt := 0
	for _, img := range images {
		if !strings.Contains(img, "alt=") || strings.Contains(img, `alt=""`) {
			missingAlt++
		}
	}
	switch {
	case len(images) == 0:
		add(CheckImageAltText, StatusWarn, "No images found in content")
	case missingAlt == 0:
		add(CheckImageAltText, StatusPass, "All images have alt text")
	default:
		add(CheckImageAltText, StatusFail, "%d image(s) missing alt text", missingAlt)
	}

	if n := len(reInternal.FindAllString(htmlBody, -1)); n > 0 {
		add(CheckInternalLinks, StatusPass, "%d internal link(s) found", n)
	} else {
		add(CheckInternalLinks, StatusWarn, "No internal links found, add links to related content")
	}

	if n := len(reExternal.FindAllString(htmlBody, -1)); n > 0 {
		add(CheckExternalLinks, StatusPass, "%d external link(s) found", n)
	} else {
		add(CheckExternalLinks, StatusWarn, "No external links found")
	}

	if n := longParagraphs(htmlBody); n == 0 {
		add(CheckParagraphLength, StatusPass, "All paragraphs are a reasonable length")
	} else {
		add(CheckParagraphLength, StatusWarn, "%d paragraph(s) exceed 300 words", n)
	}

	if strings.TrimSpace(in.CoverImageURL) != "" {
		add(CheckCoverImage, StatusPass, "Post has a cover image")
	} else {
		add(CheckCoverImage, StatusWarn, "No cover image set, social shares may look plain")
	}

	if hasText {
		avg := averageSentenceLength(text, len(textWords))
		rounded := strconv.FormatFloat(avg, 'f', 0, 64)
		switch {
		case avg <= 20:
			add(CheckReadability, StatusPass, "Average sentence length: %s words", rounded)
		case avg <= 25:
			add(CheckReadability, StatusWarn, "Average sentence length: %s words (try to keep under 20)", rounded)
		default:
			add(CheckReadability, StatusFail, "Average sentence length: %s words (too long, aim for under 20)", rounded)
		}
	}

	return Result{Overall: Verdict(checks), Checks: checks}
}

// Verdict folds checks into an overall rating: poor with three or more
// failures, ok with any failure or five or more warnings, good otherwise.
func Verdict(checks []Check) Overall {
	fails, warns := count(checks)
	switch {
	case fails >= 3:
		return OverallPoor
	case fails >= 1 || warns >= 5:
		return OverallOK
	default:
		return OverallGood
	}
}

func count(checks []Check) (fails, warns int) {
	for _, c := range checks {
		switch c.Status {
		case StatusFail:
			fails++
		case StatusWarn:
			warns++
		}
	}
	return fails, warns
}

func headingLevels(htmlBody string) []int {
	var levels []int
	for _, m := range reHeadingTag.FindAllStringSubmatch(htmlBody, -1) {
		levels = append(levels, int(m[1][0]-'0'))
	}
	return levels
}

func skipsLevel(levels []int) bool {
	for i := 1; i < len(levels); i++ {
		if levels[i] > levels[i-1]+1 {
			return true
		}
	}
	return false
}

func longParagraphs(htmlBody string) int {
	n := 0
	for _, p := range reParaClose.Split(htmlBody, -1) {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if len(strings.Fields(reTag.ReplaceAllString(p, ""))) > 300 {
			n++
		}
	}
	return n
}

// averageSentenceLength divides the word count by the number of non-blank
// sentences. Text without any sentence yields 0.
func averageSentenceLength(text string, words int) float64 {
	sentences := 0
	for _, s := range reSentenceEnd.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		return 0
	}
	return float64(words) / float64(sentences)
}
