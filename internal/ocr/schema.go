package ocr

// buildResultSchema returns a JSON-Schema (draft 2020-12 subset) as a generic
// map for the recognition-result payload. Built as data so the contract stays
// next to the types it guards.
func buildResultSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"lines":        textLineArrayProp(),
			"words":        textLineArrayProp(),
			"image_width":  map[string]any{"type": "integer", "minimum": 0},
			"image_height": map[string]any{"type": "integer", "minimum": 0},
			"error":        map[string]any{"type": "string"},
		},
	}
}

// buildLayoutSchema returns the schema for the layout-detector payload.
func buildLayoutSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"regions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"class": map[string]any{"type": "string", "minLength": 1},
						"score": confidenceProp(),
						"box":   boxProp(),
					},
					"required": []string{"class", "box"},
				},
			},
			"image_width":  map[string]any{"type": "integer", "minimum": 0},
			"image_height": map[string]any{"type": "integer", "minimum": 0},
		},
	}
}

func textLineArrayProp() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"box":        boxProp(),
				"text":       map[string]any{"type": "string"},
				"confidence": confidenceProp(),
			},
			"required": []string{"box", "text"},
		},
	}
}

func boxProp() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"x1": map[string]any{"type": "number"},
			"y1": map[string]any{"type": "number"},
			"x2": map[string]any{"type": "number"},
			"y2": map[string]any{"type": "number"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func confidenceProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
}
