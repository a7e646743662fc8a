package pipeline

// ModelDescriptor describes one class of normalized entries.
type ModelDescriptor struct {
	Source     string   `json:"source"`
	ModelName  string   `json:"modelName"`
	ModelLabel string   `json:"modelLabel"`
	FieldNames []string `json:"fieldNames"`
}

// Ref returns the by-name reference entries carry to their model.
func (m ModelDescriptor) Ref() ModelRef {
	return ModelRef{Source: m.Source, ModelName: m.ModelName}
}

// ModelRef links an entry to its ModelDescriptor without owning it.
type ModelRef struct {
	Source    string `json:"source"`
	ModelName string `json:"modelName"`
}

// Entry is a normalized record contributed by any source plugin.
type Entry interface {
	Model() ModelRef
}

// Data is the accumulating object threaded through every plugin in a run.
// Plugins never modify it in place; see Extend and Apply.
type Data struct {
	Models  []ModelDescriptor `json:"models"`
	Objects []Entry           `json:"objects"`
	// Buckets holds data owned by other plugins, keyed by bucket name.
	Buckets map[string][]any `json:"buckets,omitempty"`
}

// Delta is what a plugin's transform contributes to Data.
type Delta struct {
	Models  []ModelDescriptor
	Objects []Entry
	Buckets map[string][]any
}

// NewData returns the empty object a run starts from.
func NewData() Data {
	return Data{
		Models:  []ModelDescriptor{},
		Objects: []Entry{},
	}
}

// Extend returns a new Data with model appended to Models and entries
// appended to Objects. The result never shares backing arrays with data,
// so holders of the old value see no change.
func Extend(data Data, model ModelDescriptor, entries []Entry) Data {
	return data.Apply(Delta{
		Models:  []ModelDescriptor{model},
		Objects: entries,
	})
}

// Apply merges d into a copy of data.
func (data Data) Apply(d Delta) Data {
	out := Data{
		Models:  make([]ModelDescriptor, 0, len(data.Models)+len(d.Models)),
		Objects: make([]Entry, 0, len(data.Objects)+len(d.Objects)),
	}
	out.Models = append(append(out.Models, data.Models...), d.Models...)
	out.Objects = append(append(out.Objects, data.Objects...), d.Objects...)

	if len(data.Buckets) > 0 || len(d.Buckets) > 0 {
		out.Buckets = make(map[string][]any, len(data.Buckets)+len(d.Buckets))
		for name, items := range data.Buckets {
			out.Buckets[name] = append([]any(nil), items...)
		}
		for name, items := range d.Buckets {
			out.Buckets[name] = append(out.Buckets[name], items...)
		}
	}
	return out
}

// EntriesOf returns the objects that belong to ref, in order.
func (data Data) EntriesOf(ref ModelRef) []Entry {
	var out []Entry
	for _, e := range data.Objects {
		if e.Model() == ref {
			out = append(out, e)
		}
	}
	return out
}
