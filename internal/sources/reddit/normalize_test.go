package reddit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-source/internal/api"
)

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"the martian chronicles", "The Martian Chronicles"},
		{"a  b", "A  B"},
		{"", ""},
		{" leading and trailing ", " Leading And Trailing "},
		{"iPhone mcDonald", "IPhone McDonald"},
		{"ALREADY UPPER", "ALREADY UPPER"},
		{"élan über", "Élan Über"},
		{"tab\tseparated", "Tab\tseparated"},
		{"42 rockets", "42 Rockets"},
		{"\xffoo bar", "\xffoo Bar"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleCase(tt.in))
		})
	}
}

func sampleItems() []api.Item {
	return []api.Item{
		{ID: "a", Title: "the martian chronicles", URL: "https://example.com/a", Subreddit: "spacex", Score: 5},
		{ID: "b", Title: "", URL: "https://example.com/b", Subreddit: "spacex"},
	}
}

func TestNormalize(t *testing.T) {
	model, posts := Normalize(sampleItems(), Options{})

	assert.Equal(t, SourceName, model.Source)
	assert.Equal(t, "reddit-post", model.ModelName)
	assert.Equal(t, "Reddit Post", model.ModelLabel)
	assert.Equal(t, []string{"title", "url", "subreddit"}, model.FieldNames)

	require.Len(t, posts, 2)
	assert.Equal(t, "the martian chronicles", posts[0].Title, "title unchanged without titleCase")
	assert.Equal(t, "https://example.com/a", posts[0].URL)
	assert.Equal(t, "spacex", posts[0].Subreddit)
	assert.Equal(t, model.Ref(), posts[0].Metadata)
	assert.Equal(t, model.Ref(), posts[0].Model())
}

func TestNormalize_TitleCase(t *testing.T) {
	_, posts := Normalize(sampleItems(), Options{TitleCase: true})

	require.Len(t, posts, 2)
	assert.Equal(t, "The Martian Chronicles", posts[0].Title)
	assert.Equal(t, "", posts[1].Title, "empty title is not an error")
}

func TestNormalize_Idempotent(t *testing.T) {
	items := sampleItems()
	opts := Options{TitleCase: true}

	_, first := Normalize(items, opts)
	_, second := Normalize(items, opts)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	assert.Equal(t, "the martian chronicles", items[0].Title, "input is not modified")
}

func TestPost_RecordDropsMetadata(t *testing.T) {
	_, posts := Normalize(sampleItems()[:1], Options{})

	withMeta, err := json.Marshal(posts[0])
	require.NoError(t, err)
	assert.Contains(t, string(withMeta), `"__metadata"`)

	record, err := json.Marshal(posts[0].Record())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"title":"the martian chronicles","url":"https://example.com/a","subreddit":"spacex"}`,
		string(record))
}
