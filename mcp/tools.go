package mcp

// ToolOption is a function that configures a Tool
type ToolOption func(*Tool)

// PropertyOption is a function that configures a property
type PropertyOption func(map[string]interface{})

// NewTool creates a new Tool with the given name and options
func NewTool(name string, opts ...ToolOption) Tool {
	tool := Tool{
		Name: name,
		InputSchema: ToolInputSchema{
			Type:       "object",
			Properties: make(map[string]interface{}),
			Required:   nil, // Will be omitted from JSON if empty
		},
	}

	for _, opt := range opts {
		opt(&tool)
	}

	return tool
}

// WithDescription adds a description to the Tool
func WithDescription(description string) ToolOption {
	return func(t *Tool) {
		t.Description = description
	}
}

// Required marks a property as required
func Required() PropertyOption {
	return func(schema map[string]interface{}) {
		schema["required"] = true
	}
}

// WithString adds a string property to the tool schema
func WithString(name string, opts ...PropertyOption) ToolOption {
	return func(t *Tool) {
		schema := map[string]interface{}{
			"type": "string",
		}

		for _, opt := range opts {
			opt(schema)
		}

		// Remove required from property schema and add to InputSchema.required
		if required, ok := schema["required"].(bool); ok && required {
			delete(schema, "required")
			t.InputSchema.Required = append(t.InputSchema.Required, name)
		}

		t.InputSchema.Properties[name] = schema
	}
}
