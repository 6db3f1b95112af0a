package assess

import "fmt"

// systemPrompt pins the engine to JSON-only output; anything else is parse
// failure territory.
const systemPrompt = `You are a research paper assessor for a systematic literature review. ` +
	`Respond with ONLY a valid JSON object. Do not include explanatory text, markdown ` +
	`formatting, or commentary before or after the JSON.`

// contentBudget caps how much extracted text is sent per call.
const contentBudget = 8000

const screenInstructions = `Assess the following research paper.

Respond with a JSON object: {"relevant": <bool>, "significant": <bool>}.
"relevant" is true if at least half of the paper's content deals with the review
topic. "significant" is true if the paper presents a significant development:
a novel method, architecture, or result that advances the state of the art,
not an incremental variation.

Paper content:
%s`

const categoryInstructions = `Classify the following research paper.

Respond with a JSON object: {"category": "<type>"} where <type> is exactly one of:
survey, methodology, architecture, application, theoretical, position,
book_chapter, workshop, tool, other.
Choose the category matching the paper's primary contribution.

Paper content:
%s`

const summaryInstructions = `Summarize the following research paper.

Respond with a JSON object: {"summary": "<text>"}. The summary must be 3-4
sentences covering the problem addressed, the specific contribution, and the
significance of the work. Synthesize; do not restate the abstract.

Paper content:
%s`

const takeawaysInstructions = `Extract the key takeaways of the following research paper.

Respond with a JSON object: {"takeaways": "<text>"}. Give 2-4 sentences of
concrete, actionable findings: novel techniques introduced, demonstrated
improvements, and important limitations identified. Avoid background material.

Paper content:
%s`

// buildPrompt fills an instruction template with truncated paper content.
func buildPrompt(template, content string) string {
	if len(content) > contentBudget {
		content = content[:contentBudget]
	}
	return fmt.Sprintf(template, content)
}
