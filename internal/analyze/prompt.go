package analyze

import "fmt"

// maxTextLen keeps prompts inside small-model context limits.
const maxTextLen = 15000

const systemPrompt = `You are a university scheduling assistant analyzing course registration pages.

Your ONLY goal is to decide whether the user's condition is met, based on seat availability.

Analyze the provided text from a course catalog page. Look for patterns like:
- "Seats (Total: X, Open: Y, Waitlist: Z)"
- Section numbers (typically 4 digits like 0201, 0202, etc.)
- Any indication of seat availability

Important guidelines:
- Ignore Waitlist numbers - only care about Open seats
- Extract the exact section ID (e.g., "0201", "0204")
- Only mark is_available as true if the user's condition holds
- Be precise: if Open is 0 or not found, mark is_available as false

Respond with a single JSON object and nothing else:
{"is_available": bool, "sections": [{"section_id": string, "open_seats": int, "total_seats": int, "waitlist": int}], "raw_text_summary": string}`

func buildPrompt(text, name, instructions string) string {
	if len(text) > maxTextLen {
		text = text[:maxTextLen] + "\n\n[Content truncated...]"
	}
	return fmt.Sprintf(`Analyze this course registration page text.

Course: %s

User instructions: %s

**Page Content:**
%s

---

Your task:
1. Look for section numbers and their seat information
2. Include all sections found (even if Open=0) in the sections list
3. Return is_available=true ONLY if the user's instructions are satisfied
4. Provide a brief summary of what you observed in raw_text_summary`,
		name, instructions, text)
}
