package jisho

// apiResponse is the envelope of /api/v1/search/words.
type apiResponse struct {
	Meta apiMeta    `json:"meta"`
	Data []apiEntry `json:"data"`
}

type apiMeta struct {
	Status int `json:"status"`
}

// apiEntry is one word in the search results.
type apiEntry struct {
	Slug     string        `json:"slug"`
	IsCommon bool          `json:"is_common"`
	Tags     []string      `json:"tags"`
	JLPT     []string      `json:"jlpt"`
	Japanese []apiJapanese `json:"japanese"`
	Senses   []apiSense    `json:"senses"`
}

// apiJapanese is one written form. Kana-only words have no Word.
type apiJapanese struct {
	Word    string `json:"word"`
	Reading string `json:"reading"`
}

type apiSense struct {
	EnglishDefinitions []string `json:"english_definitions"`
	PartsOfSpeech      []string `json:"parts_of_speech"`
	Tags               []string `json:"tags"`
	Info               []string `json:"info"`
}

// form returns the written form, falling back to the reading.
func (j apiJapanese) form() string {
	if j.Word != "" {
		return j.Word
	}
	return j.Reading
}
