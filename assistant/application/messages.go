package application

import "kisan-gateway/assistant/domain"

type messageID int

const (
	msgRateLimited messageID = iota
	msgEmptyQuestion
	msgUpstreamRejected
	msgUpstreamFailed
	msgAskAgain
)

var messages = map[domain.LanguageMode]map[messageID]string{
	domain.LangHindi: {
		msgRateLimited:      "बहुत ज्यादा अनुरोध। 1 मिनट रुकें।",
		msgEmptyQuestion:    "कृपया अपना सवाल पूछें",
		msgUpstreamRejected: "AI सेवा में समस्या। कृपया 1 मिनट बाद फिर कोशिश करें।",
		msgUpstreamFailed:   "सर्वर में थोड़ी दिक्कत है। फिर कोशिश करें।",
		msgAskAgain:         "फिर से पूछें",
	},
	domain.LangEnglish: {
		msgRateLimited:      "Too many requests. Please wait 1 minute.",
		msgEmptyQuestion:    "Please ask your question.",
		msgUpstreamRejected: "There is a problem with the AI service. Please try again after 1 minute.",
		msgUpstreamFailed:   "The server is having some trouble. Please try again.",
		msgAskAgain:         "Please ask again.",
	},
	domain.LangMarathi: {
		msgRateLimited:      "खूप जास्त विनंत्या. 1 मिनिट थांबा.",
		msgEmptyQuestion:    "कृपया तुमचा प्रश्न विचारा.",
		msgUpstreamRejected: "AI सेवेत अडचण आहे. कृपया 1 मिनिटाने पुन्हा प्रयत्न करा.",
		msgUpstreamFailed:   "सर्व्हरमध्ये थोडी अडचण आहे. पुन्हा प्रयत्न करा.",
		msgAskAgain:         "पुन्हा विचारा.",
	},
}

func localized(lang domain.LanguageMode, id messageID) string {
	if m, ok := messages[lang]; ok {
		return m[id]
	}
	return messages[domain.LangHindi][id]
}
