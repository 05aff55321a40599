package biz

import (
	"fmt"
	"strings"
)

// promptTemplate 限定模型只依据召回的上下文作答。
const promptTemplate = `You are a helpful AI assistant. Use ONLY the context below to answer.

--- CONTEXT ---
%s
--- END CONTEXT ---

User question: %s

Provide a clear, accurate answer.`

// BuildPrompt 把召回的块和用户问题拼装为最终提示。
// 块之间用空行分隔，顺序与检索结果一致。
func BuildPrompt(contexts []string, question string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(contexts, "\n\n"), question)
}
