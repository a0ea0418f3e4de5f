package domain

// languageNames maps ConceptNet language codes to English names.  The list
// covers every language with a non-trivial vocabulary in the 5.7 release.
var languageNames = map[string]string{
	"ae":  "Avestan",
	"af":  "Afrikaans",
	"ang": "Old English",
	"ar":  "Arabic",
	"ast": "Asturian",
	"az":  "Azerbaijani",
	"be":  "Belarusian",
	"bg":  "Bulgarian",
	"ca":  "Catalan",
	"cs":  "Czech",
	"cy":  "Welsh",
	"da":  "Danish",
	"de":  "German",
	"el":  "Greek",
	"en":  "English",
	"eo":  "Esperanto",
	"es":  "Spanish",
	"et":  "Estonian",
	"eu":  "Basque",
	"fa":  "Persian",
	"fi":  "Finnish",
	"fo":  "Faroese",
	"fr":  "French",
	"fro": "Old French",
	"ga":  "Irish",
	"gd":  "Scottish Gaelic",
	"gl":  "Galician",
	"grc": "Ancient Greek",
	"gv":  "Manx",
	"he":  "Hebrew",
	"hi":  "Hindi",
	"hu":  "Hungarian",
	"hy":  "Armenian",
	"id":  "Indonesian",
	"io":  "Ido",
	"is":  "Icelandic",
	"it":  "Italian",
	"ja":  "Japanese",
	"ka":  "Georgian",
	"kk":  "Kazakh",
	"ko":  "Korean",
	"ku":  "Kurdish",
	"la":  "Latin",
	"lt":  "Lithuanian",
	"lv":  "Latvian",
	"mg":  "Malagasy",
	"mk":  "Macedonian",
	"ms":  "Malay",
	"mul": "Multilingual",
	"nl":  "Dutch",
	"nn":  "Norwegian Nynorsk",
	"no":  "Norwegian",
	"non": "Old Norse",
	"oc":  "Occitan",
	"pl":  "Polish",
	"pt":  "Portuguese",
	"ro":  "Romanian",
	"ru":  "Russian",
	"sa":  "Sanskrit",
	"se":  "Northern Sami",
	"sh":  "Serbo-Croatian",
	"sk":  "Slovak",
	"sl":  "Slovenian",
	"sq":  "Albanian",
	"sv":  "Swedish",
	"sw":  "Swahili",
	"ta":  "Tamil",
	"te":  "Telugu",
	"th":  "Thai",
	"tl":  "Tagalog",
	"tr":  "Turkish",
	"uk":  "Ukrainian",
	"ur":  "Urdu",
	"vi":  "Vietnamese",
	"vo":  "Volapük",
	"xcl": "Classical Armenian",
	"yi":  "Yiddish",
	"zh":  "Chinese",
}

// LanguageName returns the English name for a language code, or "" when the
// code is not one ConceptNet is known to use.
func LanguageName(code string) string {
	return languageNames[code]
}

func NewLanguage(code string) *Language {
	lang := &Language{
		Code: code,
		Name: LanguageName(code),
	}
	return lang
}
