package services

import "github.com/tmc/langchaingo/prompts"

// ComplianceRule is one of the six fixed checks applied to an act.
type ComplianceRule struct {
	ID          string
	Description string
}

// ComplianceRules lists the fixed rule set in reporting order.
var ComplianceRules = []ComplianceRule{
	{ID: "R1", Description: "The act must define key terms"},
	{ID: "R2", Description: "The act must specify eligibility criteria"},
	{ID: "R3", Description: "The act must specify responsibilities of the administering authority"},
	{ID: "R4", Description: "The act must include enforcement provisions or penalties"},
	{ID: "R5", Description: "The act must include a payment calculation or entitlement structure"},
	{ID: "R6", Description: "The act must include record-keeping or reporting requirements"},
}

const summarizeSystem = `You are an expert legal analyst. Summarize the given act in 5-10 bullet points focusing on: purpose, key definitions, eligibility, obligations, and enforcement elements. Output one bullet per line, each starting with "- ".`

var summarizePrompt = prompts.PromptTemplate{
	Template:       "Please summarize this act:\n\n{{.text}}",
	InputVariables: []string{"text"},
	TemplateFormat: prompts.TemplateFormatGoTemplate,
}

const extractSectionsSystem = `You are an expert legal analyst. Extract the following sections from the given act and return them as a JSON object with exactly these keys, each holding an array of strings:
- definitions
- obligations
- responsibilities
- eligibility
- payments
- penalties
- record_keeping

Return only valid JSON with these exact keys and no other text.`

var extractSectionsPrompt = prompts.PromptTemplate{
	Template:       "Extract the legislative sections from this act:\n\n{{.text}}",
	InputVariables: []string{"text"},
	TemplateFormat: prompts.TemplateFormatGoTemplate,
}

const checkRuleSystem = `You are an expert legal compliance checker. Check whether the given act satisfies the stated rule.

Respond with a single JSON object containing exactly these keys:
- "passed": true or false
- "confidence": a number between 0 and 1
- "evidence": the specific section or text that supports your decision

Return only the JSON object and no other text. Be thorough and accurate.`

var checkRulePrompt = prompts.PromptTemplate{
	Template:       "Check this rule against the act.\n\nRule: {{.rule}}\n\nAct text:\n{{.text}}",
	InputVariables: []string{"rule", "text"},
	TemplateFormat: prompts.TemplateFormatGoTemplate,
}
