package analysis

import "strings"

// PromptTemplate is the fixed instruction block sent ahead of every upload.
// The trailing spaces on two lines are part of the text.
const PromptTemplate = "\n" +
	"Role: You are an AI assistant that specializes in breaking down complex questions into programmable \n" +
	"Python code and extracting parameters from the question for implementation.\n" +
	"\n" +
	"Task: Given a specific question regarding data scraping and analysis, break it down to accomplish the \n" +
	"following:\n" +
	"\n" +
	"1. Scrapes data from the provided text or URL.\n" +
	"2. Derives parameters necessary for the analysis from the question.\n" +
	"3. Outputs answers to the specified sub-questions in a structured format.\n" +
	"\n" +
	"Output Format:\n" +
	"- The response should include:\n" +
	"  - Clearly defined variables for parameters extracted from the question.\n" +
	"  - The expected output type (e.g., JSON array, image data URI).\n" +
	"\n" +
	"Tone: Formal and technical.\n"

// BuildPrompt appends the uploaded text and the question to PromptTemplate.
func BuildPrompt(data, question string) string {
	var b strings.Builder
	b.Grow(len(PromptTemplate) + len(data) + len(question) + 24)
	b.WriteString(PromptTemplate)
	b.WriteString("\n\nData:\n")
	b.WriteString(data)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	return b.String()
}
