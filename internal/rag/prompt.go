package rag

import "strings"

const promptTemplate = `You are an assistant answering user queries. Give the most relevant and accurate response for the query, using the context when it is relevant.

**Query:** {{query}}
**Context:** {{context}}

**Your Task:**

1. Understand the query and the information the user needs.
2. Use the provided context to support your answer when it applies.
3. Write a clear, concise and informative response that addresses the query directly.
4. Stay objective.
5. Cite sources from the context where applicable.
6. Format the response for readability with headings, paragraphs or bullet points. Wrap code in <pre> and <code> tags.

**Example Response:**

> Based on the provided context, the answer to your query is: ...
`

var contextSanitizer = strings.NewReplacer("'", "", `"`, "", "\n", " ")

// SanitizeContext removes quotes and flattens newlines so the context fits on the prompt's context line.
func SanitizeContext(context string) string {
	return contextSanitizer.Replace(context)
}

// BuildPrompt fills the prompt template with the literal query and the sanitized context.
func BuildPrompt(query, context string) string {
	return strings.NewReplacer(
		"{{query}}", query,
		"{{context}}", SanitizeContext(context),
	).Replace(promptTemplate)
}
