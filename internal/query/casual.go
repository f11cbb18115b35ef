package query

import (
	"regexp"
	"strings"
)

// casualPattern pairs a match pattern with the canned reply for that kind of
// small talk. Casual queries bypass retrieval entirely.
type casualPattern struct {
	pattern  *regexp.Regexp
	response string
}

var casualPatterns = []casualPattern{
	{
		regexp.MustCompile(`^(hi|hello|hey|hiya|good morning|good afternoon|good evening|greetings)$`),
		"Hello! I'm your Edify AI assistant. How can I help you learn today?",
	},
	{
		regexp.MustCompile(`^(bye|goodbye|bye bye|good bye|see you|see ya|take care|farewell)$`),
		"Goodbye! Feel free to come back anytime you have educational questions. Happy learning!",
	},
	{
		regexp.MustCompile(`^(how are you|how r u|how are u|hows it going|whats up|how you doing)$`),
		"I'm doing great and ready to help you learn! What educational topic interests you today?",
	},
	{
		regexp.MustCompile(`^(what is your name|whats your name|who are you|introduce yourself)$`),
		"I'm your Edify AI Assistant! I'm here to help you with educational questions and learning. What would you like to know?",
	},
	{
		regexp.MustCompile(`^(thanks|thank you|thank you so much|thanks a lot|thx|ty|cheers|appreciated)$`),
		"You're very welcome! I'm always happy to help you learn. Feel free to ask me anything else!",
	},
}

var punctRe = regexp.MustCompile(`[^\w\s]`)

// DetectCasual reports whether a query is small talk rather than an
// information request, and if so returns the canned reply.
func DetectCasual(q string) (bool, string) {
	clean := punctRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(q)), "")
	clean = strings.Join(strings.Fields(clean), " ")
	for _, cp := range casualPatterns {
		if cp.pattern.MatchString(clean) {
			return true, cp.response
		}
	}
	return false, ""
}
