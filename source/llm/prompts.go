package llm

import "fmt"

const entryResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "headword": {"type": "string"},
          "reading": {"type": "string"},
          "definitions": {"type": "array", "items": {"type": "string"}},
          "translations": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["headword", "translations"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entries"],
  "additionalProperties": false
}`

const entryPromptTemplate = `You are a Japanese dictionary. Look up the word the user gives and return dictionary entries as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Return at most %d entries, the most common sense first.
- headword is the dictionary form as it is usually written, in kanji when it has one.
- reading is the hiragana reading of the headword.
- definitions are short explanations written in Japanese.
- translations are short English glosses, one meaning per item.
- If the input is not a Japanese word, return "entries": [].
- Do not invent words. The JSON must parse without errors; no trailing commas and no text outside the object.

Example:
Input: "ねこ"
Output:
{
  "entries": [
    {"headword":"猫","reading":"ねこ","definitions":["食肉目ネコ科の哺乳類。"],"translations":["cat"]}
  ]
}

Example:
Input: "食べた"
Output:
{
  "entries": [
    {"headword":"食べる","reading":"たべる","definitions":["食物を口に入れ、かんで飲み込む。"],"translations":["to eat"]}
  ]
}`

func buildSystemPrompt(maxEntries int) string {
	return fmt.Sprintf(entryPromptTemplate, entryResponseSchema, maxEntries)
}
