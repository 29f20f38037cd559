package attribution

import (
	"regexp"
	"strings"
)

// Pattern catalogs. Each catalog is evaluated in order; the first match wins
// where a capture is extracted.

// systemPatterns match bot prompts, automated notices and tag announcements.
var systemPatterns = compile(
	// bot formatting and prompt emojis
	`^\*`,
	`^💬`,
	`^📝`,
	`^🎯`,
	`^📋`,
	`^📞`,
	`^📧`,
	`^🔔`,
	`^🕒`,
	`^👉`,

	`(?i)adicionar manualmente etiqueta`,
	`(?i)instrução para o atendente`,
	`(?i)sistema automatico`,
	`(?i)mensagem automática`,

	`(?i)para começarmos,?\s*qual`,
	`(?i)selecione o número do serviço`,
	`(?i)escolha uma das opções`,
	`(?i)digite o número correspondente`,
	`(?i)estamos prontos para ajudar`,
	`(?i)nossa equipe irá te atender`,
	`(?i)como podemos te ajudar`,
	`(?i)conte um pouco mais sobre`,
	`(?i)você escolheu.*assuntos`,
	`(?i)entendido!.*você escolheu`,

	`.*😊.*💙`,
	`.*💙.*😊`,
	`.*🎯.*📝`,
	`.*📞.*💬`,

	// tag announcements
	`(?i)etiqueta\s+(adicionada|removida)`,
	`(?i)tag\s+(adicionada|removida)`,

	// welcome
	`(?i)bem-vindo.*ao\s+despachante`,
	`(?i)bem-vinda.*ao\s+despachante`,

	// business hours notices
	`(?i)fora\s+do\s+nosso\s+hor[aá]rio`,
	`(?i)hor[aá]rio\s+de\s+atendimento`,
	`(?i)atendemos\s+de\s+segunda`,

	// automated replies
	`(?i)podemos\s+deixar\s+suas\s+informa[çc][õo]es`,
	`(?i)qual\s+[eé]\s+o\s+seu\s+nome`,
	`(?i)como\s+poderemos\s+te\s+ajudar`,
	`(?i)escolha\s+uma\s+op[çc][aã]o`,
	`(?i)daremos\s+prioridade`,
	`(?i)vamos\s+agilizar\s+o\s+processo`,
	`(?i)por\s+favor.*me\s+informe`,

	`(?i)💙.*despachante`,
	`🚗💨`,
	`🚙💨`,
	`(?i)estamos.*prontos.*para.*ajudar`,
	`(?i)nossa.*equipe.*irá.*atender`,
	`(?i)prontamente.*💙`,
	`(?i)atendimento.*personalizado`,
)

// tagAddedPatterns capture the tag name of an "added" announcement.
var tagAddedPatterns = compile(
	`(?i)etiqueta adicionada na conversa[:\s]*([^.\n]+)`,
	`(?i)tag adicionada[:\s]*([^.\n]+)`,
	`(?i)adicionada a etiqueta[:\s]*([^.\n]+)`,
	`(?i)nova etiqueta[:\s]*([^.\n]+)`,
	`(?i)etiqueta[:\s]+([^.\n]+)\s+adicionada`,
	`(?i)tag[:\s]+([^.\n]+)\s+adicionada`,
)

// tagRemovedPatterns capture the tag name of a "removed" announcement.
var tagRemovedPatterns = compile(
	`(?i)etiqueta removida da conversa[:\s]*([^.\n]+)`,
	`(?i)tag removida[:\s]*([^.\n]+)`,
	`(?i)removida a etiqueta[:\s]*([^.\n]+)`,
	`(?i)etiqueta exclu[íi]da[:\s]*([^.\n]+)`,
	`(?i)etiqueta[:\s]+([^.\n]+)\s+removida`,
	`(?i)tag[:\s]+([^.\n]+)\s+removida`,
)

// closurePatterns capture who closed the chat.
var closurePatterns = compile(
	`(?i)chat finalizado pelo atendente\s+(.+?)(?:\.|$|\n)`,
	`(?i)conversa finalizada por\s+(.+?)(?:\.|$|\n)`,
	`(?i)atendimento encerrado por\s+(.+?)(?:\.|$|\n)`,
	`(?i)chat encerrado pelo?\s+(.+?)(?:\.|$|\n)`,
	`(?i)finalizado pelo atendente\s+(.+?)(?:\.|$|\n)`,
)

// sitePatterns match customers announcing they came from the website. The
// brand-specific patterns are added by NewSiteDetector.
var sitePatterns = compile(
	`ol[aá],?\s*vim do site`,
	`ol[aá],?\s*encontrei voc[eê]s no site`,
	`ol[aá],?\s*vi no site`,
	`vim do site`,
	`encontrei no site`,
	`vi no site`,
	`pelo site`,
	`atrav[eé]s do site`,
	`formulário do site`,
	`contato do site`,
	`p[aá]gina web`,
	`website`,
)

// siteTagKeywords mark a conversation tag as website related.
var siteTagKeywords = []string{"site", "website", "web", "online", "formulario", "contato-site"}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

// matchAny reports whether text matches any pattern in the catalog.
func matchAny(catalog []*regexp.Regexp, text string) bool {
	for _, re := range catalog {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// firstCapture returns the trimmed first capture group of the first pattern
// that matches text with a non-empty capture.
func firstCapture(catalog []*regexp.Regexp, text string) (string, bool) {
	for _, re := range catalog {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if s := strings.TrimSpace(m[1]); s != "" {
			return s, true
		}
	}
	return "", false
}

// IsSystemMessage reports whether text is a bot prompt or automated notice.
func IsSystemMessage(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return matchAny(systemPatterns, text)
}
