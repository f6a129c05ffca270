package autofill

import (
	"fmt"
	"sort"
	"strings"
)

const sectionRule = "================================================================================"

// systemContent steers the model toward idea-grounded answers before the
// field prompt is attached.
const systemContent = `You are an AI assistant helping to autofill a Lean Canvas for Invention (LCI) template.

CRITICAL REQUIREMENT: If the user provides their idea/business concept, you MUST base ALL your answers specifically on that idea. Do NOT generate generic or random answers.

Your task:
1. Carefully read and understand the user's idea/business concept
2. Generate answers that are directly relevant and specific to their idea
3. Be concise, relevant, and business-focused
4. Only fill in fields that are empty or null
5. Maintain consistency with the user's idea throughout all answers

Remember: Every answer should clearly relate to the specific business idea provided by the user.`

// ConstructPrompt formats the field-filling prompt. Section order is fixed:
// template identity, idea concept, context fields, fields to fill, repeated
// patterns, instructions, example JSON shape.
func ConstructPrompt(req Request) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("TEMPLATE: %s", req.TemplateKey))
	parts = append(parts, fmt.Sprintf("STEP DESCRIPTION: %s\n", req.StepDescription))

	hasIdea := strings.TrimSpace(req.IdeaDescription) != ""
	if hasIdea {
		parts = append(parts,
			sectionRule,
			"USER'S IDEA/BUSINESS CONCEPT (USE THIS AS PRIMARY CONTEXT):",
			sectionRule,
			strings.TrimSpace(req.IdeaDescription),
			sectionRule,
			"",
		)
	}

	if len(req.Fields) > 0 {
		parts = append(parts, "FIELDS (for context):")
		for _, field := range req.Fields {
			parts = append(parts, fmt.Sprintf("  - %s", field))
		}
		parts = append(parts, "")
	}

	parts = append(parts, "FIELDS TO FILL:")
	for _, name := range sortedKeys(req.FieldHints) {
		parts = append(parts, fmt.Sprintf("  - %s: %s (currently empty)", name, req.FieldHints[name]))
	}
	parts = append(parts, "")

	if len(req.RepeatedFields) > 0 {
		parts = append(parts, "REPEATED FIELD PATTERNS:")
		for _, pattern := range req.RepeatedFields {
			parts = append(parts, fmt.Sprintf("  - %v", pattern))
		}
		parts = append(parts, "")
	}

	parts = append(parts, "INSTRUCTIONS:")
	if hasIdea {
		parts = append(parts,
			"1. CRITICAL: All your answers MUST be directly based on the USER'S IDEA/BUSINESS CONCEPT provided above.",
			"2. CRITICAL: Do NOT generate generic or random answers. Everything must be specific to the user's idea.",
			"3. Analyze the user's idea carefully and tailor each field to match their specific business concept.",
			"4. Use the current answers as context to maintain consistency with the user's idea.",
			"5. If a field already has a value, improve it while staying true to the user's concept.",
			"6. Make the answers specific, relevant, and professional - always aligned with the user's idea.",
			"7. For repeated fields, generate multiple instances that fit the user's business concept.",
			"8. Return ONLY a JSON object with field names as keys and generated values as values.",
			"9. Do NOT include any explanations, markdown formatting, or code blocks.",
			"10. Ensure the JSON is valid and properly formatted.",
		)
	} else {
		parts = append(parts,
			"1. Generate appropriate values for all fields listed above.",
			"2. Use the current answers as context to maintain consistency.",
			"3. If a field already has a value, you may improve it or keep it as is.",
			"4. Make the answers specific, relevant, and professional.",
			"5. For repeated fields, generate multiple instances if appropriate.",
			"6. Return ONLY a JSON object with field names as keys and generated values as values.",
			"7. Do NOT include any explanations, markdown formatting, or code blocks.",
			"8. Ensure the JSON is valid and properly formatted.",
		)
	}
	parts = append(parts,
		"",
		"Example format:",
		"{",
		`  "fieldName1": "generated value 1",`,
		`  "fieldName2": "generated value 2"`,
		"}",
		"",
		"Now generate the JSON response:",
	)

	return strings.Join(parts, "\n")
}

// sortedKeys keeps the prompt deterministic for identical requests.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
