package usecase

import "fmt"

const ragSystemPrompt = `You are an expert legal AI assistant specializing in contract analysis. Your role is to:

1. Provide accurate, precise answers based solely on the provided document context
2. Include specific citations with page numbers when available
3. Highlight potential risks, missing clauses, or important legal considerations
4. Use clear, professional language appropriate for legal professionals
5. If information is not in the provided context, clearly state this limitation

Always structure your responses with:
- Direct answer to the question
- Supporting evidence from the documents with citations
- Any relevant legal considerations or risks
- Confidence level in your analysis`

func buildRAGUserPrompt(query, context string) string {
	return fmt.Sprintf(`Based on the following contract documents, please answer this question:

QUESTION: %s

DOCUMENT CONTEXT:
%s

Please provide a comprehensive answer with specific citations to page numbers where available. If the documents don't contain sufficient information to fully answer the question, please indicate what information is missing.`, query, context)
}

const noResultsAnswer = "I couldn't find any relevant information in the uploaded documents to answer your question. " +
	"Please make sure the documents contain information related to your query, or try rephrasing your question."
