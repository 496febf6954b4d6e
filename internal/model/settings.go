package model

// Settings is the user-adjustable application settings blob.
type Settings struct {
	Theme                    string `json:"theme"`
	FontSize                 string `json:"font_size"`
	AutoSave                 bool   `json:"auto_save"`
	ShowAnswerAfterSelection bool   `json:"show_answer_after_selection"`
	ShowAnalysisAfterAnswer  bool   `json:"show_analysis_after_answer"`
	AutoNextQuestion         bool   `json:"auto_next_question"`
}

// DefaultSettings returns the settings used until the user changes them.
func DefaultSettings() Settings {
	return Settings{
		Theme:                    "light",
		FontSize:                 "medium",
		AutoSave:                 true,
		ShowAnswerAfterSelection: true,
		ShowAnalysisAfterAnswer:  false,
		AutoNextQuestion:         false,
	}
}
