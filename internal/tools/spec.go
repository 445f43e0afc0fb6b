// Package tools exposes the task operations as eino tools and implements
// identifier resolution and bulk execution on top of the task store.
package tools

import (
	"github.com/cloudwego/eino/schema"
)

// ToolSpec describes one tool: name, description, parameters.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]ParamSpec
}

// ParamSpec describes a single tool parameter.
type ParamSpec struct {
	Type        string
	Description string
	Required    bool
	Enum        []string
}

// specToToolInfo converts a ToolSpec to an eino schema.ToolInfo.
func specToToolInfo(spec *ToolSpec) *schema.ToolInfo {
	info := &schema.ToolInfo{
		Name: spec.Name,
		Desc: spec.Description,
	}

	if len(spec.Parameters) > 0 {
		params := make(map[string]*schema.ParameterInfo, len(spec.Parameters))
		for name, p := range spec.Parameters {
			params[name] = &schema.ParameterInfo{
				Type:     paramTypeToDataType(p.Type),
				Desc:     p.Description,
				Required: p.Required,
				Enum:     p.Enum,
			}
		}
		info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
	}

	return info
}

// paramTypeToDataType maps string type names to eino DataType constants.
func paramTypeToDataType(t string) schema.DataType {
	switch t {
	case "string":
		return schema.String
	case "number":
		return schema.Number
	case "integer":
		return schema.Integer
	case "boolean":
		return schema.Boolean
	case "array":
		return schema.Array
	case "object":
		return schema.Object
	default:
		return schema.String
	}
}
