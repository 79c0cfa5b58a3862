package llm

import (
	"fmt"
	"strings"
	"time"
)

const systemPrompt = `Você é o assistente de um pequeno comércio que usa um sistema de caixa (PDV).
Responda sempre em português do Brasil, de forma curta e objetiva.
Use as ferramentas para obter dados reais; nunca invente valores.
Valores monetários estão em reais (BRL). Mostre-os no formato R$ 1.234,56.
Se uma ferramenta falhar, explique o problema em uma frase.
Você não pode abrir, fechar ou movimentar o caixa; apenas consultar.`

// SystemPromptWithContext adds the current date, and for the REPL a hint
// that follow-up questions may refer to earlier answers.
func SystemPromptWithContext(interactive bool) string {
	return systemPromptAt(time.Now(), interactive)
}

func systemPromptAt(now time.Time, interactive bool) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	fmt.Fprintf(&b, "\n\nData de hoje: %s (%s).", now.Format(time.DateOnly), now.Weekday())
	if interactive {
		b.WriteString("\nEsta é uma conversa: perguntas seguintes podem se referir às respostas anteriores.")
	}
	return b.String()
}
