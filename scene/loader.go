// Package scene loads declarative scene manifests written in HCL and
// materializes them as run-time node trees. A manifest is a nesting of
// node blocks; each node block carries property blocks whose value
// expression determines the property's type and default:
//
//	node "panel" {
//	  property "opacity" {
//	    value      = 0.8
//	    visibility = "redraw"
//	  }
//	  node "title" {
//	    property "text" { value = "hello" }
//	  }
//	}
package scene

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/notf-ui/notf/internal/ctxlog"
	"github.com/notf-ui/notf/node"
	"github.com/notf-ui/notf/property"
)

// Loader parses scene manifests and builds node trees from them.
type Loader struct {
	logger *slog.Logger
	parser *hclparse.Parser
}

// NewLoader creates a loader. The parser caches parsed files, so one
// loader can serve repeated loads of the same manifest.
func NewLoader(ctx context.Context) *Loader {
	return &Loader{
		logger: ctxlog.FromContext(ctx),
		parser: hclparse.NewParser(),
	}
}

// Load parses the manifest at path and attaches its top-level nodes under
// parent. It returns a handle per top-level node, in manifest order. UI
// thread only, like every other tree mutation.
func (l *Loader) Load(ctx context.Context, path string, parent node.Node) ([]node.Handle, error) {
	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("scene: parsing %s: %w", path, diags)
	}
	return l.build(ctx, path, file, parent)
}

// LoadString is Load for an in-memory manifest. The name labels
// diagnostics.
func (l *Loader) LoadString(ctx context.Context, name, src string, parent node.Node) ([]node.Handle, error) {
	file, diags := l.parser.ParseHCL([]byte(src), name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("scene: parsing %s: %w", name, diags)
	}
	return l.build(ctx, name, file, parent)
}

func (l *Loader) build(ctx context.Context, name string, file *hcl.File, parent node.Node) ([]node.Handle, error) {
	var manifest fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &manifest); diags.HasErrors() {
		return nil, fmt.Errorf("scene: decoding %s: %w", name, diags)
	}

	handles := make([]node.Handle, 0, len(manifest.Nodes))
	total := 0
	for _, ns := range manifest.Nodes {
		h, count, err := l.materialize(parent, ns)
		if err != nil {
			return nil, fmt.Errorf("scene: building %s: %w", name, err)
		}
		handles = append(handles, h)
		total += count
	}
	l.logger.Debug("scene loaded", "manifest", name, "nodes", total)
	return handles, nil
}

// materialize builds one node block: properties first, then the attach,
// then the children, and a finalize once the subtree is complete.
func (l *Loader) materialize(parent node.Node, s nodeSchema) (node.Handle, int, error) {
	n := node.NewRunTime(s.Name)
	for _, ps := range s.Properties {
		p, err := declareProperty(ps)
		if err != nil {
			return node.Handle{}, 0, err
		}
		if err := n.AddProperty(p); err != nil {
			return node.Handle{}, 0, fmt.Errorf("node %q: %w", s.Name, err)
		}
	}

	h, err := node.Attach(parent, n)
	if err != nil {
		return node.Handle{}, 0, err
	}

	count := 1
	for _, child := range s.Nodes {
		_, sub, err := l.materialize(n, child)
		if err != nil {
			return node.Handle{}, 0, err
		}
		count += sub
	}
	if err := n.Finalize(); err != nil {
		return node.Handle{}, 0, err
	}
	return h, count, nil
}

// declareProperty turns a property block into a typed property. The cty
// type of the value expression picks the cell type: bool, number (as
// float64) or string.
func declareProperty(s propertySchema) (property.Any, error) {
	vis := property.Redraw
	if s.Visibility != nil {
		var ok bool
		if vis, ok = parseVisibility(*s.Visibility); !ok {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Invalid property visibility",
				Detail:   fmt.Sprintf("Property %q declares visibility %q; want redraw, refresh or invisible.", s.Name, *s.Visibility),
				Subject:  s.Value.Range().Ptr(),
			}}
		}
	}

	val, diags := s.Value.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	switch val.Type() {
	case cty.Bool:
		var v bool
		if err := gocty.FromCtyValue(val, &v); err != nil {
			return nil, fmt.Errorf("property %q: %w", s.Name, err)
		}
		return property.New(property.Decl[bool]{Name: s.Name, Default: v, Visibility: vis}), nil
	case cty.Number:
		var v float64
		if err := gocty.FromCtyValue(val, &v); err != nil {
			return nil, fmt.Errorf("property %q: %w", s.Name, err)
		}
		return property.New(property.Decl[float64]{Name: s.Name, Default: v, Visibility: vis}), nil
	case cty.String:
		var v string
		if err := gocty.FromCtyValue(val, &v); err != nil {
			return nil, fmt.Errorf("property %q: %w", s.Name, err)
		}
		return property.New(property.Decl[string]{Name: s.Name, Default: v, Visibility: vis}), nil
	default:
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported property type",
			Detail:   fmt.Sprintf("Property %q has type %s; want bool, number or string.", s.Name, val.Type().FriendlyName()),
			Subject:  s.Value.Range().Ptr(),
		}}
	}
}

func parseVisibility(s string) (property.Visibility, bool) {
	switch s {
	case "redraw":
		return property.Redraw, true
	case "refresh":
		return property.Refresh, true
	case "invisible":
		return property.Invisible, true
	default:
		return property.Redraw, false
	}
}
