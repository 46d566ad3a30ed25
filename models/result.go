package models

// Result is the envelope every scheduling endpoint responds with.
type Result struct {
	Success  bool     `json:"success"`
	Data     any      `json:"data,omitempty"`
	Error    string   `json:"error,omitempty"`
	Code     string   `json:"code,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func Ok(data any, warnings ...string) Result {
	return Result{Success: true, Data: data, Warnings: warnings}
}

func Fail(code, message string, warnings ...string) Result {
	return Result{Success: false, Error: message, Code: code, Warnings: warnings}
}
