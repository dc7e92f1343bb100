package scene

import "github.com/hashicorp/hcl/v2"

// fileSchema is the root of a scene manifest: a flat list of node blocks.
type fileSchema struct {
	Nodes []nodeSchema `hcl:"node,block"`
}

// nodeSchema is one node block. Nesting node blocks nests nodes.
type nodeSchema struct {
	Name       string           `hcl:"name,label"`
	Properties []propertySchema `hcl:"property,block"`
	Nodes      []nodeSchema     `hcl:"node,block"`
}

// propertySchema declares one property. The value expression fixes both
// the default and the property's Go type; visibility defaults to redraw.
type propertySchema struct {
	Name       string         `hcl:"name,label"`
	Value      hcl.Expression `hcl:"value"`
	Visibility *string        `hcl:"visibility,optional"`
}
