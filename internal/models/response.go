package models

// Response is the JSON envelope returned by the form endpoints.
type Response struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	TestMode bool   `json:"test_mode,omitempty"`
	Data     any    `json:"data,omitempty"`
	Debug    any    `json:"debug,omitempty"`
}

// MailDebug is the error detail attached to failed signups when debug errors are on.
type MailDebug struct {
	Message      string `json:"message"`
	Code         string `json:"code,omitempty"`
	ResponseCode int    `json:"responseCode,omitempty"`
}
