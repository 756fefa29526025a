package jobs

import (
	"strconv"

	"github.com/mattsolo1/grove-try/pkg/tree"
)

// Option is one selectable job. Name keeps the raw "(name)" form so filters
// and writers see what the file said.
type Option struct {
	Name    string
	Options []Option
}

// Category is a top-level group of options.
type Category struct {
	Name    string
	Options []Option
}

func decodeCategories(raw []map[string]any) ([]Category, error) {
	cats := make([]Category, 0, len(raw))
	for i, entry := range raw {
		path := "jobs[" + strconv.Itoa(i) + "]"
		if len(entry) != 1 {
			return nil, malformed(path, "category entry must have exactly one key, got %d", len(entry))
		}
		for name, kids := range entry {
			if name == "" {
				return nil, malformed(path, "empty category name")
			}
			opts, err := decodeOptions(path+"."+name, kids)
			if err != nil {
				return nil, err
			}
			cats = append(cats, Category{Name: name, Options: opts})
		}
	}
	return cats, nil
}

// decodeOptions accepts a list of entries, a single entry, or nothing.
func decodeOptions(path string, v any) ([]Option, error) {
	switch kids := v.(type) {
	case nil:
		return nil, nil
	case []any:
		opts := make([]Option, 0, len(kids))
		for i, kid := range kids {
			opt, err := decodeOption(path+"["+strconv.Itoa(i)+"]", kid)
			if err != nil {
				return nil, err
			}
			opts = append(opts, opt)
		}
		return opts, nil
	default:
		opt, err := decodeOption(path, kids)
		if err != nil {
			return nil, err
		}
		return []Option{opt}, nil
	}
}

func decodeOption(path string, v any) (Option, error) {
	switch e := v.(type) {
	case string:
		if stripped, _ := tree.ParseName(e); stripped == "" {
			return Option{}, malformed(path, "empty option name")
		}
		return Option{Name: e}, nil
	case map[string]any:
		name, ok := e["name"].(string)
		if stripped, _ := tree.ParseName(name); !ok || stripped == "" {
			return Option{}, malformed(path, "option object needs a non-empty string name")
		}
		for key := range e {
			if key != "name" && key != "options" {
				return Option{}, malformed(path, "unknown key %q", key)
			}
		}
		kids, err := decodeOptions(path+"."+name, e["options"])
		if err != nil {
			return Option{}, err
		}
		return Option{Name: name, Options: kids}, nil
	default:
		return Option{}, malformed(path, "unexpected option of type %T", v)
	}
}

// BuildTree constructs the job tree and links it once.
func (d *Document) BuildTree() *tree.Tree {
	return BuildTree(d.Categories)
}

// BuildTree constructs one category node per entry and one option node per
// nested entry, then links the tree.
func BuildTree(cats []Category) *tree.Tree {
	t := tree.New()
	for _, c := range cats {
		id := t.AddCategory(c.Name)
		addOptions(t, id, c.Options)
	}
	t.Link()
	return t
}

func addOptions(t *tree.Tree, parent tree.NodeID, opts []Option) {
	for _, o := range opts {
		id := t.AddOption(parent, o.Name)
		addOptions(t, id, o.Options)
	}
}

// BuildTree validates the file and constructs its tree.
func (f *File) BuildTree() (*tree.Tree, *Document, error) {
	doc, err := f.Document()
	if err != nil {
		return nil, nil, err
	}
	return doc.BuildTree(), doc, nil
}

// Encode converts typed categories back into the file's jobs shape.
func Encode(cats []Category) []map[string]any {
	out := make([]map[string]any, len(cats))
	for i, c := range cats {
		out[i] = map[string]any{c.Name: encodeOptions(c.Options)}
	}
	return out
}

func encodeOptions(opts []Option) []any {
	out := make([]any, len(opts))
	for i, o := range opts {
		if len(o.Options) == 0 {
			out[i] = o.Name
			continue
		}
		out[i] = map[string]any{"name": o.Name, "options": encodeOptions(o.Options)}
	}
	return out
}
