package llm

import (
	"fmt"
)

// Supported description languages
const (
	LangEnglish = "en"
	LangFrench  = "fr"
)

// SupportedLanguage reports whether a prompt template exists for lang
func SupportedLanguage(lang string) bool {
	return lang == LangEnglish || lang == LangFrench
}

const englishTemplate = `Provide detailed information about %[1]s, located in the %[2]s department of the %[3]s region of France. Use the following structure exactly:

DESCRIPTION:
[2-3 sentence overview of what makes the town unique and intriguing.]

HISTORY:
[2-3 sentences outlining the town's background and the notable past events that define it.]

ATTRACTIONS:
[Choose between 1 and 5 attractions, depending on how many truly notable sites the town has.
 Small villages or lesser-known towns: 1 key point of interest.
 Mid-sized towns: 2 main attractions.
 Major cities or historically rich places: up to 5.]
1. [Name] - [Short description of its significance and location]
2. [Name] - [Short description of its significance and location]
(continue numbering up to the chosen count)`

const frenchTemplate = `Fournis des informations détaillées sur %[1]s, située dans le département de %[2]s, en région %[3]s, en France. Suis exactement la structure ci-dessous :

DESCRIPTION:
[Une présentation de 2 à 3 phrases sur ce qui rend cette ville unique ou attrayante pour les visiteurs.]

HISTORY:
[Un résumé en 2 à 3 phrases des origines de la ville et des événements marquants qui la définissent.]

ATTRACTIONS:
[Indique entre 1 et 5 attractions selon l'importance réelle de la ville.
 Petits villages ou villes peu connues : 1 point d'intérêt majeur.
 Villes moyennes : 2 attractions principales.
 Grandes villes ou lieux à forte valeur historique : jusqu'à 5.]
1. [Nom] - [Brève description de son intérêt et de sa localisation]
2. [Nom] - [Brève description de son intérêt et de sa localisation]
(poursuivre la numérotation jusqu'au nombre retenu)`

const (
	englishStructuredHint = "\n\nReturn the three sections as the description, history and attractions fields of the JSON response, one attraction per array entry."
	frenchStructuredHint  = "\n\nRenvoie les trois sections dans les champs description, history et attractions de la réponse JSON, une attraction par élément du tableau."
)

// BuildPrompt renders the description request for a city in lang
func BuildPrompt(lang, city, department, region string, structured bool) (string, error) {
	var tmpl, hint string
	switch lang {
	case LangEnglish:
		tmpl, hint = englishTemplate, englishStructuredHint
	case LangFrench:
		tmpl, hint = frenchTemplate, frenchStructuredHint
	default:
		return "", fmt.Errorf("unsupported language %q", lang)
	}

	prompt := fmt.Sprintf(tmpl, city, department, region)
	if structured {
		prompt += hint
	}
	return prompt, nil
}
