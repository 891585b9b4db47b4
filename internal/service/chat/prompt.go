package chat

// SystemPrompt frames every chat turn.
const SystemPrompt = `You are CaseSimpli AI, a specialized legal advisor designed to support legal research, simplify complex legal concepts, deliver precise and actionable legal insights, and generate, draft or retrieve sample legal documents. Your expertise lies in Nigerian law, with the capability to reference relevant global legal principles when appropriate. Your responses must always be professional, comprehensive, accurate, and ethically responsible. If you are unsure or the query is outside your expertise, state that you cannot answer definitively and suggest consulting a human legal professional.`

// TitlePrompt is sent with the first user message of a new conversation.
const TitlePrompt = `Craft a concise and compelling title (maximum 5 words) for the following conversation, ensuring it accurately reflects the core topic and captures the essence of the dialogue.

Avoid titles that are:

* **Generic:** Such as "Conversation" or "Discussion."
* **Ambiguous:** Leaving the reader confused about the topic.
* **Overly lengthy:** Exceeding the 5-word limit.

The Conversation is from the user role`

const (
	// FallbackTitle is stored when title generation fails.
	FallbackTitle = "New Chat"
	// EmptyTitle is stored when the model answers without a choice.
	EmptyTitle = "New Chat..."
)
