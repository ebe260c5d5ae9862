package schema

import "sort"

// Languages maps Kokoro language codes to their display names.
var Languages = map[string]string{
	"a": "American English",
	"b": "British English",
}

// Voices lists the speaker ids shipped with the Kokoro weights, per language.
var Voices = map[string][]string{
	"a": {
		"af_heart",
		"af_alloy",
		"af_aoede",
		"af_bella",
		"af_jessica",
		"af_kore",
		"af_nicole",
		"af_nova",
		"af_river",
		"af_sarah",
		"af_sky",
		"am_adam",
		"am_echo",
		"am_eric",
		"am_fenrir",
		"am_liam",
		"am_michael",
		"am_onyx",
		"am_puck",
		"am_santa",
	},
	"b": {
		"bf_alice",
		"bf_emma",
		"bf_isabella",
		"bf_lily",
		"bm_daniel",
		"bm_fable",
		"bm_george",
		"bm_lewis",
	},
}

// LanguageCodes returns the supported language codes in stable order.
func LanguageCodes() []string {
	codes := make([]string, 0, len(Languages))
	for c := range Languages {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
