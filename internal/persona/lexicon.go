// Package persona infers a heuristic communication profile for one chat
// participant. No trained models: every signal is a keyword scan against
// per-locale lexicon tables.
package persona

// taggedRule attaches an output tag to the keywords that trigger it.
// Rules are slices, not maps, so scan order and output are deterministic.
type taggedRule struct {
	Tag      string
	Keywords []string
}

// Lexicon is the keyword table for one locale. Keeping the tables as data
// (rather than inline literals in the scoring code) keeps each heuristic
// tunable and testable in isolation.
type Lexicon struct {
	Warmth   []string
	Humor    []string
	Formal   []string
	Informal []string

	// Greeting/farewell cues used for closings extraction.
	Closings []string

	Themes    []taggedRule
	Roles     []taggedRule
	CheckIns  []taggedRule
	Care      []taggedRule
	Media     []taggedRule
	Routines  []taggedRule
	Nuggets   []string
	AvoidCues []taggedRule

	// Markers used for coarse language detection.
	Markers []string

	// Guidance strings surfaced in Boundaries.Do, in the locale's voice.
	AdviceWarm     string
	AdviceHumor    string
	AdviceGreeting string
	AdviceEmoji    string
}

// Lexicons holds the supported locale tables.
var Lexicons = map[string]Lexicon{
	"pt-BR": lexiconPT,
	"en-US": lexiconEN,
}

var lexiconPT = Lexicon{
	Warmth: []string{
		"amor", "querido", "querida", "saudade", "beijo", "bjs", "abraço",
		"te amo", "coração", "meu bem", "filho", "filha", "cuide-se", "cuida",
	},
	Humor: []string{
		"kkk", "rsrs", "haha", "hehe", "kk", "piada", "engraçado", "😂", "🤣",
	},
	Formal: []string{
		"prezado", "cordialmente", "atenciosamente", "por gentileza",
		"senhor", "senhora", "agradeço", "cumprimentos",
	},
	Informal: []string{
		"vc", "blz", "tb", "pq", "oq", "mano", "cara", "né", "tá", "valeu",
	},
	Closings: []string{
		"bom dia", "boa tarde", "boa noite", "até amanhã", "até logo",
		"tchau", "beijos", "abraços", "fica com deus", "durma bem",
	},
	Themes: []taggedRule{
		{"família", []string{"família", "filho", "filha", "neto", "neta", "irmão", "irmã", "primo", "tia", "tio", "mãe", "pai"}},
		{"futebol", []string{"futebol", "jogo", "time", "gol", "campeonato", "torcida"}},
		{"fé e religião", []string{"deus", "igreja", "missa", "culto", "oração", "rezar", "abençoe", "amém"}},
		{"saúde", []string{"médico", "consulta", "remédio", "exame", "hospital", "pressão", "saúde"}},
		{"trabalho", []string{"trabalho", "serviço", "emprego", "reunião", "chefe", "empresa"}},
		{"viagens", []string{"viagem", "viajar", "passeio", "praia", "estrada"}},
		{"culinária", []string{"almoço", "jantar", "receita", "cozinha", "bolo", "comida"}},
	},
	Roles: []taggedRule{
		{"profissional ativo", []string{"trabalho", "serviço", "reunião", "emprego"}},
		{"aposentado", []string{"aposentado", "aposentada", "aposentadoria"}},
		{"estudante", []string{"faculdade", "universidade", "prova", "aula"}},
	},
	CheckIns: []taggedRule{
		{"manda bom dia todas as manhãs", []string{"bom dia"}},
		{"deseja boa noite antes de dormir", []string{"boa noite", "durma bem"}},
		{"pergunta como a pessoa está", []string{"tudo bem", "como você está", "como vc tá", "como está"}},
	},
	Care: []taggedRule{
		{"expressa saudade", []string{"saudade"}},
		{"declara afeto diretamente", []string{"te amo", "amo você", "amo vocês"}},
		{"pede para se cuidar", []string{"se cuida", "cuide-se", "juízo"}},
		{"oferece ajuda", []string{"precisa de algo", "qualquer coisa me chama", "posso ajudar"}},
	},
	Media: []taggedRule{
		{"compartilha fotos", []string{"foto", "imagem"}},
		{"manda áudios", []string{"áudio", "audio"}},
		{"gosta de música", []string{"música", "canção", "cantar"}},
		{"compartilha vídeos", []string{"vídeo", "video"}},
	},
	Routines: []taggedRule{
		{"café da manhã em família", []string{"café da manhã"}},
		{"almoço de domingo", []string{"almoço de domingo", "domingo"}},
		{"vai à igreja", []string{"igreja", "missa", "culto"}},
		{"caminhada diária", []string{"caminhada", "caminhar"}},
	},
	Nuggets: []string{
		"aniversário", "natal", "ano novo", "festa", "casamento", "formatura",
		"páscoa", "presente", "lembra quando",
	},
	AvoidCues: []taggedRule{
		{"evitar assuntos de saúde delicados", []string{"não quero falar disso", "prefiro não falar"}},
	},
	Markers: []string{
		"não", "você", "vc", "obrigado", "obrigada", "muito", "bom dia",
		"está", "tudo bem", "sim", "também", "já",
	},
	AdviceWarm:     "usar linguagem carinhosa e próxima",
	AdviceHumor:    "fazer piadas leves de vez em quando",
	AdviceGreeting: "mandar bom dia e boa noite",
	AdviceEmoji:    "usar emojis como a pessoa usava",
}

var lexiconEN = Lexicon{
	Warmth: []string{
		"love", "dear", "miss you", "sweetheart", "honey", "hugs", "kisses",
		"take care", "my dear", "proud of you",
	},
	Humor: []string{
		"haha", "lol", "lmao", "rofl", "funny", "joke", "😂", "🤣",
	},
	Formal: []string{
		"regards", "sincerely", "dear sir", "dear madam", "kindly",
		"appreciate", "respectfully",
	},
	Informal: []string{
		"gonna", "wanna", "gotta", "yeah", "yep", "nah", "dude", "bro", "u ",
	},
	Closings: []string{
		"good morning", "good night", "good evening", "see you", "talk soon",
		"bye", "take care", "sleep well", "goodnight",
	},
	Themes: []taggedRule{
		{"family", []string{"family", "son", "daughter", "grandson", "granddaughter", "brother", "sister", "mom", "dad"}},
		{"sports", []string{"football", "soccer", "game", "match", "team", "score"}},
		{"faith", []string{"god", "church", "pray", "prayer", "blessed", "amen"}},
		{"health", []string{"doctor", "appointment", "medicine", "hospital", "health"}},
		{"work", []string{"work", "job", "meeting", "office", "boss"}},
		{"travel", []string{"trip", "travel", "vacation", "beach", "flight"}},
		{"cooking", []string{"lunch", "dinner", "recipe", "cooking", "cake"}},
	},
	Roles: []taggedRule{
		{"working professional", []string{"work", "job", "meeting", "office"}},
		{"retired", []string{"retired", "retirement"}},
		{"student", []string{"college", "university", "exam", "class"}},
	},
	CheckIns: []taggedRule{
		{"sends good morning texts", []string{"good morning"}},
		{"says good night before bed", []string{"good night", "goodnight", "sleep well"}},
		{"asks how you are doing", []string{"how are you", "how's it going", "you ok"}},
	},
	Care: []taggedRule{
		{"says they miss you", []string{"miss you"}},
		{"expresses love directly", []string{"love you", "i love you"}},
		{"tells you to take care", []string{"take care", "stay safe"}},
		{"offers help", []string{"let me know if", "anything you need", "can i help"}},
	},
	Media: []taggedRule{
		{"shares photos", []string{"photo", "picture", "pic"}},
		{"sends voice notes", []string{"voice note", "audio"}},
		{"enjoys music", []string{"music", "song", "playlist"}},
		{"shares videos", []string{"video", "clip"}},
	},
	Routines: []taggedRule{
		{"morning coffee", []string{"morning coffee", "breakfast"}},
		{"sunday lunch", []string{"sunday lunch", "sunday"}},
		{"goes to church", []string{"church", "service"}},
		{"daily walk", []string{"walk", "walking"}},
	},
	Nuggets: []string{
		"birthday", "christmas", "new year", "party", "wedding", "graduation",
		"easter", "present", "remember when",
	},
	AvoidCues: []taggedRule{
		{"avoid sensitive health topics", []string{"don't want to talk about", "rather not talk"}},
	},
	Markers: []string{
		"the ", "you ", "thanks", "very", "good morning", "how are",
		"yes", "also", "already", "and ",
	},
	AdviceWarm:     "use warm, affectionate language",
	AdviceHumor:    "make light jokes now and then",
	AdviceGreeting: "open mornings and close evenings with a greeting",
	AdviceEmoji:    "use emoji the way they did",
}

// localeOrder fixes scan order so output is deterministic.
var localeOrder = []string{"pt-BR", "en-US"}

// lexiconsFor returns the hinted locale's table first, then the others.
// Real chats mix languages, so every table is scanned; the hint only
// controls precedence of tags.
func lexiconsFor(locale string) []Lexicon {
	out := make([]Lexicon, 0, len(localeOrder))
	if lex, ok := Lexicons[locale]; ok {
		out = append(out, lex)
	}
	for _, name := range localeOrder {
		if name == locale {
			continue
		}
		out = append(out, Lexicons[name])
	}
	return out
}
