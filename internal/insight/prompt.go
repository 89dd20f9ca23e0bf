package insight

import (
	"fmt"
	"strings"
)

func BuildPrompt(symbol, companyName string) string {
	name := strings.TrimSpace(companyName)
	if name == "" {
		name = symbol
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Please provide beginner-friendly insights about %s (%s) stock. Include:\n", symbol, name)
	b.WriteString("1. Company's current status and recent performance\n")
	b.WriteString("2. Major achievements or challenges\n")
	b.WriteString("3. Why this stock might be strong or risky for beginners\n")
	b.WriteString("4. Simple explanation of what the company does\n")
	b.WriteString("5. Any recent news or market trends affecting it\n\n")
	b.WriteString("Keep the explanation simple and educational for someone new to investing. ")
	b.WriteString("Limit to 200 words and use bullet points where appropriate.")
	return b.String()
}
