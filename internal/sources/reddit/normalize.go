package reddit

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"reddit-source/internal/api"
	"reddit-source/internal/pipeline"
)

const (
	SourceName = "sourcebit-source-reddit"
	ModelName  = "reddit-post"
	ModelLabel = "Reddit Post"
)

// Model returns the descriptor declared on every transform.
func Model() pipeline.ModelDescriptor {
	return pipeline.ModelDescriptor{
		Source:     SourceName,
		ModelName:  ModelName,
		ModelLabel: ModelLabel,
		FieldNames: []string{"title", "url", "subreddit"},
	}
}

// Post is a normalized reddit-post entry.
type Post struct {
	Title     string            `json:"title"`
	URL       string            `json:"url"`
	Subreddit string            `json:"subreddit"`
	Metadata  pipeline.ModelRef `json:"__metadata"`
}

func (p Post) Model() pipeline.ModelRef {
	return p.Metadata
}

// PostRecord is a Post without its metadata, as handed to sinks.
type PostRecord struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Subreddit string `json:"subreddit"`
}

func (p Post) Record() PostRecord {
	return PostRecord{
		Title:     p.Title,
		URL:       p.URL,
		Subreddit: p.Subreddit,
	}
}

// Normalize maps cached items to Posts. It has no side effects.
func Normalize(items []api.Item, opts Options) (pipeline.ModelDescriptor, []Post) {
	model := Model()
	ref := model.Ref()

	posts := make([]Post, 0, len(items))
	for _, item := range items {
		title := item.Title
		if opts.TitleCase {
			title = TitleCase(title)
		}
		posts = append(posts, Post{
			Title:     title,
			URL:       item.URL,
			Subreddit: item.Subreddit,
			Metadata:  ref,
		})
	}
	return model, posts
}

// TitleCase upper-cases the first character of every space-separated word
// and leaves the rest of the word alone. Empty words (from leading,
// trailing or repeated spaces) are kept as they are.
func TitleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError && size <= 1 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
