package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gosimple/slug"

	"github.com/beyondbeauty/press/util/common"
)

type contentKind int

const (
	contentAbsent contentKind = iota
	contentText
	contentList
)

// Content is the article body as submitted: either one block of text or a list
// of paragraphs. Text may itself hold a JSON-encoded list.
type Content struct {
	kind  contentKind
	text  string
	items []string
}

func TextContent(text string) Content {
	return Content{kind: contentText, text: text}
}

func ListContent(items []string) Content {
	return Content{kind: contentList, items: items}
}

func (c Content) Present() bool {
	return c.kind != contentAbsent
}

// UnmarshalJSON accepts a string, an array of strings or null.
func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = Content{}
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*c = TextContent(text)
	case len(data) > 0 && data[0] == '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("content must be a list of strings: %w", err)
		}
		*c = ListContent(items)
	default:
		return fmt.Errorf("content must be a string or a list of strings")
	}
	return nil
}

// paragraphs expands the content into its raw paragraph sequence. It fails
// only for text that is a JSON array of something other than strings.
func (c Content) paragraphs() ([]string, bool) {
	switch c.kind {
	case contentList:
		return c.items, true
	case contentText:
		var items []string
		err := json.Unmarshal([]byte(c.text), &items)
		if err == nil {
			return items, true
		}
		if isJSONArray(c.text) {
			return nil, false
		}
		if strings.ContainsAny(c.text, "\r\n") {
			text := strings.ReplaceAll(c.text, "\r\n", "\n")
			return strings.Split(text, "\n"), true
		}
		return []string{c.text}, true
	}
	return nil, true
}

func isJSONArray(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, "[") && json.Valid([]byte(text))
}

// slugReserved are the characters a slug cannot carry through a URL path
// segment.
const slugReserved = "/?#\\"

// ActiveFlag is true only for a JSON true or the string "true".
type ActiveFlag bool

func ParseActiveFlag(s string) ActiveFlag {
	return ActiveFlag(s == "true")
}

func (f *ActiveFlag) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	*f = ActiveFlag(s == "true" || s == `"true"`)
	return nil
}

// Submission is an article as received from a client, before normalization.
type Submission struct {
	Slug     string     `json:"name"`
	Title    string     `json:"title"`
	Content  Content    `json:"content"`
	IsActive ActiveFlag `json:"isActive"`
}

// ArticlePayload is a validated article ready for the store.
type ArticlePayload struct {
	Slug     string
	Title    string
	Body     []string
	IsActive bool
	Image    *string
}

// NormalizeSubmission validates sub and turns it into a payload. All missing or
// invalid fields are reported together.
func NormalizeSubmission(sub Submission) (ArticlePayload, error) {
	var missing, invalid []string

	slugValue := strings.TrimSpace(sub.Slug)
	if slugValue == "" {
		missing = append(missing, "name")
	} else if strings.ContainsAny(slugValue, slugReserved) {
		invalid = append(invalid, "name")
	}

	title := strings.TrimSpace(sub.Title)
	if title == "" {
		missing = append(missing, "title")
	}

	var body []string
	if !sub.Content.Present() {
		missing = append(missing, "content")
	} else {
		paragraphs, ok := sub.Content.paragraphs()
		for _, p := range paragraphs {
			if strings.TrimSpace(p) != "" {
				body = append(body, p)
			}
		}
		if !ok || len(body) == 0 {
			invalid = append(invalid, "content")
		}
	}

	if len(missing) > 0 {
		return ArticlePayload{}, common.NewValidationError("missing required fields", append(missing, invalid...)...)
	}
	if len(invalid) > 0 {
		reason := "invalid fields"
		if invalid[0] == "name" {
			reason = fmt.Sprintf("invalid fields (name cannot contain %q, try %q)", slugReserved, slug.Make(slugValue))
		}
		return ArticlePayload{}, common.NewValidationError(reason, invalid...)
	}

	return ArticlePayload{
		Slug:     slugValue,
		Title:    title,
		Body:     body,
		IsActive: bool(sub.IsActive),
	}, nil
}
