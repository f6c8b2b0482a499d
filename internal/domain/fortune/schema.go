package fortune

type fieldType int

const (
	typeNumber fieldType = iota
	typeString
	typeArray
)

// field describes one property of the response document.
type field struct {
	name        string
	typ         fieldType
	description string
	required    bool
	items       []field // object items for typeArray
}

// sectorFields describe one recommendedSectors entry; all are required.
var sectorFields = []field{
	{name: "name", typ: typeString, required: true},
	{name: "reason", typ: typeString, required: true},
	{name: "potential", typ: typeNumber, required: true},
}

// resultFields is the single source for both schema renderings. luckyColor is
// requested but optional.
var resultFields = []field{
	{name: "wealthLuck", typ: typeNumber, required: true},
	{name: "overallLuck", typ: typeNumber, required: true},
	{name: "careerLuck", typ: typeNumber, required: true},
	{name: "summary", typ: typeString, required: true, description: "富有新年气息、幽默、带点毒舌的点评和总结"},
	{name: "wealthInsight", typ: typeString, required: true},
	{name: "economicLogic", typ: typeString, required: true, description: "基于边牧智慧和全球逻辑的犀利洞察"},
	{name: "recommendedSectors", typ: typeArray, required: true, items: sectorFields},
	{name: "luckyAdvice", typ: typeString, required: true, description: "俏皮、现代且实用的行动建议"},
	{name: "luckyColor", typ: typeString},
	{name: "luckyNumber", typ: typeString, required: true},
	{name: "luckyDirection", typ: typeString, required: true},
	{name: "talismanPrompt", typ: typeString, required: true, description: "描述一个穿着极其时髦红袄的边牧，戴着墨镜，手拿一杯奶茶和金元宝，背景是赛博朋克风格的新年灯笼"},
}

// RequiredFields lists the response properties the model must return.
func RequiredFields() []string {
	return required(resultFields)
}

// ResponseSchema renders the document shape in the OpenAPI subset the Gemini
// API accepts as generationConfig.responseSchema (upper-case type names).
func ResponseSchema() map[string]any {
	return object(resultFields, rendering{
		names:        map[fieldType]string{typeNumber: "NUMBER", typeString: "STRING", typeArray: "ARRAY"},
		object:       "OBJECT",
		descriptions: true,
	})
}

// JSONSchema renders the same shape as a draft-04 JSON Schema for validating
// what the model actually sent back. Optional properties also accept null.
func JSONSchema() map[string]any {
	return object(resultFields, rendering{
		names:        map[fieldType]string{typeNumber: "number", typeString: "string", typeArray: "array"},
		object:       "object",
		nullOptional: true,
	})
}

type rendering struct {
	names        map[fieldType]string
	object       string
	descriptions bool
	nullOptional bool
}

func object(fields []field, r rendering) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		var typ any = r.names[f.typ]
		if r.nullOptional && !f.required {
			typ = []string{r.names[f.typ], "null"}
		}
		p := map[string]any{"type": typ}
		if r.descriptions && f.description != "" {
			p["description"] = f.description
		}
		if f.typ == typeArray {
			p["items"] = object(f.items, r)
		}
		props[f.name] = p
	}
	out := map[string]any{
		"type":       r.object,
		"properties": props,
	}
	if req := required(fields); len(req) > 0 {
		out["required"] = req
	}
	return out
}

func required(fields []field) []string {
	var out []string
	for _, f := range fields {
		if f.required {
			out = append(out, f.name)
		}
	}
	return out
}
