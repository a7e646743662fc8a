package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntry struct {
	ID  string
	ref ModelRef
}

func (e testEntry) Model() ModelRef { return e.ref }

func model(name string) ModelDescriptor {
	return ModelDescriptor{Source: "test", ModelName: name, ModelLabel: name, FieldNames: []string{"id"}}
}

func TestExtend_AppendsWithoutMutatingInput(t *testing.T) {
	m0, m1 := model("m0"), model("m1")
	e0 := testEntry{ID: "e0", ref: m0.Ref()}
	e1 := testEntry{ID: "e1", ref: m1.Ref()}
	e2 := testEntry{ID: "e2", ref: m1.Ref()}

	// Spare capacity would let a naive append write into the caller's array.
	models := make([]ModelDescriptor, 1, 8)
	models[0] = m0
	objects := make([]Entry, 1, 8)
	objects[0] = e0
	in := Data{Models: models, Objects: objects}

	out := Extend(in, m1, []Entry{e1, e2})

	assert.Equal(t, []ModelDescriptor{m0, m1}, out.Models)
	assert.Equal(t, []Entry{e0, e1, e2}, out.Objects)

	assert.Equal(t, []ModelDescriptor{m0}, in.Models)
	assert.Equal(t, []Entry{e0}, in.Objects)
	assert.Equal(t, []ModelDescriptor{m0}, models[:1])

	// Writes to the result must not show through to the input either.
	out.Models[0].ModelLabel = "changed"
	assert.Equal(t, "m0", in.Models[0].ModelLabel)
}

func TestExtend_RedeclaresModelEachCall(t *testing.T) {
	m := model("m")
	d := Extend(NewData(), m, nil)
	d = Extend(d, m, nil)

	assert.Len(t, d.Models, 2, "models are not deduplicated")
	assert.Empty(t, d.Objects)
}

func TestApply_PreservesOtherBuckets(t *testing.T) {
	in := Data{
		Models:  []ModelDescriptor{},
		Objects: []Entry{},
		Buckets: map[string][]any{"assets": {"a.png"}},
	}

	out := in.Apply(Delta{Buckets: map[string][]any{"assets": {"b.png"}, "pages": {"index"}}})

	assert.Equal(t, []any{"a.png", "b.png"}, out.Buckets["assets"])
	assert.Equal(t, []any{"index"}, out.Buckets["pages"])
	assert.Equal(t, []any{"a.png"}, in.Buckets["assets"])
	assert.NotContains(t, in.Buckets, "pages")
}

func TestEntriesOf(t *testing.T) {
	a, b := model("a"), model("b")
	d := Extend(NewData(), a, []Entry{testEntry{ID: "1", ref: a.Ref()}})
	d = Extend(d, b, []Entry{testEntry{ID: "2", ref: b.Ref()}, testEntry{ID: "3", ref: b.Ref()}})

	got := d.EntriesOf(b.Ref())
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].(testEntry).ID)
	assert.Equal(t, "3", got[1].(testEntry).ID)
}
