// Package speech は外部プロバイダ(Azure/Google/AWS Polly)を介した
// 音声合成とボイスカタログを提供する。
package speech

// Voice は音声合成に使うボイスの定義。
// privShortNameはAzure、languageCode/ssmlGenderはGoogle、
// voice/engineはAWS Pollyがそれぞれ使用する。
type Voice struct {
	PrivShortName string `json:"privShortName"`
	LanguageCode  string `json:"languageCode"`
	SSMLGender    string `json:"ssmlGender"`
	VoiceID       string `json:"voice"`
	Engine        string `json:"engine"`
}

// catalog はクライアントに提示する静的なボイス一覧。
var catalog = []Voice{
	{PrivShortName: "en-US-JennyNeural", LanguageCode: "en-US", SSMLGender: "FEMALE", VoiceID: "Joanna", Engine: "neural"},
	{PrivShortName: "en-US-GuyNeural", LanguageCode: "en-US", SSMLGender: "MALE", VoiceID: "Matthew", Engine: "neural"},
	{PrivShortName: "en-US-AriaNeural", LanguageCode: "en-US", SSMLGender: "FEMALE", VoiceID: "Salli", Engine: "neural"},
	{PrivShortName: "en-US-DavisNeural", LanguageCode: "en-US", SSMLGender: "MALE", VoiceID: "Joey", Engine: "neural"},
	{PrivShortName: "en-GB-SoniaNeural", LanguageCode: "en-GB", SSMLGender: "FEMALE", VoiceID: "Amy", Engine: "neural"},
	{PrivShortName: "en-GB-RyanNeural", LanguageCode: "en-GB", SSMLGender: "MALE", VoiceID: "Brian", Engine: "neural"},
	{PrivShortName: "en-AU-NatashaNeural", LanguageCode: "en-AU", SSMLGender: "FEMALE", VoiceID: "Olivia", Engine: "neural"},
	{PrivShortName: "es-ES-ElviraNeural", LanguageCode: "es-ES", SSMLGender: "FEMALE", VoiceID: "Lucia", Engine: "neural"},
	{PrivShortName: "es-MX-DaliaNeural", LanguageCode: "es-MX", SSMLGender: "FEMALE", VoiceID: "Mia", Engine: "neural"},
	{PrivShortName: "fr-FR-DeniseNeural", LanguageCode: "fr-FR", SSMLGender: "FEMALE", VoiceID: "Lea", Engine: "neural"},
	{PrivShortName: "de-DE-KatjaNeural", LanguageCode: "de-DE", SSMLGender: "FEMALE", VoiceID: "Vicki", Engine: "neural"},
	{PrivShortName: "ja-JP-NanamiNeural", LanguageCode: "ja-JP", SSMLGender: "FEMALE", VoiceID: "Takumi", Engine: "standard"},
	{PrivShortName: "ja-JP-KeitaNeural", LanguageCode: "ja-JP", SSMLGender: "MALE", VoiceID: "Takumi", Engine: "standard"},
}

// Catalog はボイス一覧のコピーを返す。
func Catalog() []Voice {
	voices := make([]Voice, len(catalog))
	copy(voices, catalog)
	return voices
}
