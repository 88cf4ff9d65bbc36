package application

import (
	"html"
	"strings"
	"text/template"

	"github.com/microcosm-cc/bluemonday"

	"kisan-gateway/assistant/domain"
)

const (
	farmerLabel    = "किसान"
	assistantLabel = "किसान साथी"
	promptDate     = "02-01-2006"
)

var languageInstructions = map[domain.LanguageMode]string{
	domain.LangHindi:   "उत्तर केवल सरल हिंदी या हिंग्लिश में दें। किसान आसानी से समझ सके।",
	domain.LangEnglish: "Reply only in simple Indian English.",
	domain.LangMarathi: "उत्तर फक्त मराठीत द्या. सोप्या शब्दात.",
}

func languageInstruction(lang domain.LanguageMode) string {
	if s, ok := languageInstructions[lang]; ok {
		return s
	}
	return languageInstructions[domain.LangHindi]
}

// PromptData é tudo o que entra no prompt; nenhum outro valor é interpolado.
type PromptData struct {
	Date                string
	LanguageInstruction string
	Transcript          string
	Message             string
}

var personaTemplate = template.Must(template.New("persona").Parse(`आप "किसान साथी" हैं – भारत का सबसे भरोसेमंद AI फार्मिंग असिस्टेंट।
आज की तारीख: {{.Date}}

आपका काम:
• फसल, मौसम, खाद, बीज, कीट, सरकारी योजनाएँ, मंडी भाव, मिट्टी, पानी बचत आदि पर सही और तुरंत काम आने वाली सलाह देना
• हमेशा भारतीय किसान की भाषा और स्थिति को ध्यान में रखें
• जवाब बहुत छोटा (2-4 वाक्य), स्पष्ट और प्रैक्टिकल हो
• जरूरी हो तो बुलेट पॉइंट्स दें
• गलत या अवैध सलाह कभी न दें
• बहुत जटिल सवाल हो तो कहें: "इसके लिए नजदीकी कृषि अधिकारी से संपर्क करें"

भाषा: {{.LanguageInstruction}}

पिछली बातचीत:
{{.Transcript}}
किसान का सवाल: {{.Message}}

आपका जवाब:
`))

// RenderPrompt monta o prompt final a partir de dados já sanitizados.
func RenderPrompt(data PromptData) (string, error) {
	var sb strings.Builder
	if err := personaTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

var stripPolicy = bluemonday.StrictPolicy()

// marcação codificada em entidades pode estar aninhada; cada passada desfaz um nível
const maxStripPasses = 4

// stripTags remove qualquer marcação e devolve texto puro ("don't" continua "don't").
// Tags que chegam como entidades (&lt;b&gt;) também são removidas: sanitiza e desfaz
// o escape até o texto parar de mudar.
func stripTags(s string) string {
	for i := 0; i < maxStripPasses; i++ {
		out := html.UnescapeString(stripPolicy.Sanitize(s))
		if out == s {
			return out
		}
		s = out
	}
	// não convergiu: devolve a versão escapada, que não tem tag nenhuma
	return stripPolicy.Sanitize(s)
}

// RenderTranscript gera uma linha "<rótulo>: <conteúdo>" por item do histórico.
// Itens sem role ou sem conteúdo são ignorados; qualquer role diferente de user conta como assistente.
func RenderTranscript(history []domain.HistoryItem) string {
	var sb strings.Builder
	for _, h := range history {
		if h.Role == "" {
			continue
		}
		content := strings.TrimSpace(stripTags(h.Content))
		if content == "" {
			continue
		}
		label := assistantLabel
		if h.Role == domain.RoleUser {
			label = farmerLabel
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(content)
		sb.WriteByte('\n')
	}
	return sb.String()
}
