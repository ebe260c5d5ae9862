package schema

// @Description TTS request body
type TTSRequest struct {
	Text string `json:"text" yaml:"text"` // text input

	Voice    string  `json:"voice,omitempty" yaml:"voice,omitempty"`         // Kokoro voice id, e.g. af_heart
	Speed    float64 `json:"speed,omitempty" yaml:"speed,omitempty"`         // speed multiplier, 1.0 is normal
	LangCode string  `json:"lang_code,omitempty" yaml:"lang_code,omitempty"` // Kokoro language code (a/b)

	Device     string `json:"device,omitempty" yaml:"device,omitempty"`                   // preferred compute device (auto|metal|cuda|cpu)
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`         // destination for response_format=wav
	Format     string `json:"response_format,omitempty" yaml:"response_format,omitempty"` // wav | wav_base64
}

// TTSResult is the bundle returned by a single synthesis call. Exactly one of
// OutputPath or AudioBase64 is set, depending on the response format.
type TTSResult struct {
	SampleRate      int     `json:"sample_rate"`
	DeviceRequested string  `json:"device_requested"`
	DeviceUsed      string  `json:"device_used"`
	UsedFallback    bool    `json:"used_fallback"`
	LangCode        string  `json:"lang_code"`
	Voice           string  `json:"voice"`
	Speed           float64 `json:"speed"`
	Format          string  `json:"response_format"`
	OutputPath      string  `json:"output_path,omitempty"`
	AudioBase64     string  `json:"audio_base64,omitempty"`
}

// PluginMetadata is the static capability descriptor of the plugin.
type PluginMetadata struct {
	Name        string              `json:"name"`
	Provider    string              `json:"provider"`
	Version     string              `json:"version"`
	Description string              `json:"description"`
	Languages   map[string]string   `json:"languages"`
	Voices      map[string][]string `json:"voices"`
	Supports    []string            `json:"supports"`
}

// Envelope is the one-line JSON emitted by the CLI boundary.
type Envelope struct {
	OK     bool       `json:"ok"`
	Result *TTSResult `json:"result,omitempty"`
	Error  string     `json:"error,omitempty"`
}

type APIError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error *APIError `json:"error,omitempty"`
}
