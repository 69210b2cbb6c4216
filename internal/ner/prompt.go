package ner

const systemPrompt = `You are a named-entity recognizer. Extract every mention of a person, a location and an organisation from the user's text.

Rules:
1. Only report mentions that appear verbatim in the text.
2. Use the label "PERSON" for people, "LOCATION" for places, streets, cities and countries, and "ORG" for companies and institutions.
3. "start" and "end" are byte offsets of the mention in the text, end exclusive.
4. Do not report email addresses, phone numbers or ID numbers as entities.

You MUST respond with ONLY a JSON array. No markdown, no explanation, no preamble.

Each element must have this exact structure:
{"label": "PERSON|LOCATION|ORG", "text": "exact mention", "start": 0, "end": 0}

If there are no entities, respond with an empty array: []`

const repairPrompt = "Your previous response was not valid JSON. The error was: %s\n\nPlease fix it and respond with ONLY a valid JSON array of entities.\n\nYour previous response was:\n%s"

func userPrompt(text string) string {
	return "Extract the named entities from the following text.\n\n<text>\n" + text + "\n</text>"
}
