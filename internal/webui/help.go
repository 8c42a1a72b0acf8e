// ABOUTME: Help pages written in Markdown and rendered with goldmark
// ABOUTME: Topics are discovered from the embedded docs/help directory

package webui

import (
	"bytes"
	"html/template"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const defaultHelpTopic = "getting-started"

// helpTopic represents a help documentation topic
type helpTopic struct {
	Slug   string
	Title  string
	Active bool
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// helpTopicOrder puts the topics in reading order; unknown slugs sort last
var helpTopicOrder = map[string]int{
	"getting-started": 1,
	"searching":       2,
	"import-export":   3,
	"scanning":        4,
	"command-line":    5,
}

// handleHelp renders the selected help topic with the topic list
func (u *UI) handleHelp(w http.ResponseWriter, r *http.Request) {
	selected := r.URL.Query().Get("topic")
	if selected == "" {
		selected = defaultHelpTopic
	}

	topics, err := listHelpTopics(selected)
	if err != nil {
		u.logger.Error("failed to read help docs", "error", err)
		http.Error(w, "Failed to load help", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	content, err := renderHelpTopic(selected)
	if err != nil {
		u.logger.Warn("failed to render help topic", "topic", selected, "error", err)
		status = http.StatusNotFound
	}

	u.renderHelp(w, status, helpData{
		Title:   "Help",
		Topics:  topics,
		Content: content,
	})
}

func listHelpTopics(selected string) ([]helpTopic, error) {
	slugs, err := HelpTopics()
	if err != nil {
		return nil, err
	}

	topics := make([]helpTopic, 0, len(slugs))
	for _, slug := range slugs {
		topics = append(topics, helpTopic{
			Slug:   slug,
			Title:  formatHelpTitle(slug),
			Active: slug == selected,
		})
	}
	return topics, nil
}

// HelpTopics returns the slugs of the embedded help pages in reading order.
func HelpTopics() ([]string, error) {
	entries, err := helpDocsFS.ReadDir("docs/help")
	if err != nil {
		return nil, err
	}

	var slugs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(entry.Name(), ".md"))
	}

	sort.Slice(slugs, func(i, j int) bool {
		oi, okI := helpTopicOrder[slugs[i]]
		oj, okJ := helpTopicOrder[slugs[j]]
		if !okI {
			oi = 100
		}
		if !okJ {
			oj = 100
		}
		if oi != oj {
			return oi < oj
		}
		return slugs[i] < slugs[j]
	})
	return slugs, nil
}

// HelpMarkdown returns the Markdown source of one help page.
func HelpMarkdown(slug string) ([]byte, error) {
	return helpDocsFS.ReadFile(path.Join("docs/help", path.Base(slug)+".md"))
}

// renderHelpTopic converts the Markdown for slug to HTML. On error the
// returned HTML is a short not-found page.
func renderHelpTopic(slug string) (template.HTML, error) {
	md, err := HelpMarkdown(slug)
	if err != nil {
		md = []byte("# Not Found\n\nThis help topic could not be found.")
	}

	var buf bytes.Buffer
	if cerr := markdown.Convert(md, &buf); cerr != nil {
		return template.HTML("<p>Failed to render help content.</p>"), cerr
	}
	// #nosec G203 -- content comes from embedded files only
	return template.HTML(buf.String()), err
}

// formatHelpTitle converts a slug to a display title
func formatHelpTitle(slug string) string {
	words := strings.Split(slug, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
