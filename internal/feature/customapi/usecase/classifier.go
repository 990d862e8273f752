package usecase

import (
	"fmt"
	"strings"

	"dashboard_backend/internal/shared/fetcherr"

	"github.com/tidwall/gjson"
)

// rule は2xxレスポンスのボディに埋め込まれたエラーを検出します。
// match は一致した場合にエラーメッセージを返します。
type rule struct {
	name  string
	match func(body gjson.Result) (string, bool)
}

// envelopeRules は評価順に並んでいます。最初に一致したルールが採用されます。
var envelopeRules = []rule{
	{name: "note", match: textField("Note")},
	{name: "information", match: textField("Information")},
	{name: "error_message", match: textField("Error Message")},
	{name: "status_error", match: statusError},
	{name: "error_code", match: errorCode},
}

// credentialHints のいずれかを含むメッセージはAPIキーの問題として扱います。
var credentialHints = []string{"apikey", "api key", "api_key", "invalid key"}

// classify はボディがエラーエンベロープであればエラーを返します。
// オブジェクト以外のJSONは常に成功とみなします。
func classify(body []byte) error {
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil
	}
	for _, r := range envelopeRules {
		if msg, ok := r.match(root); ok {
			return messageError(msg)
		}
	}
	return nil
}

func messageError(msg string) error {
	lower := strings.ToLower(msg)
	for _, h := range credentialHints {
		if strings.Contains(lower, h) {
			return fetcherr.InvalidCredential(msg)
		}
	}
	return fetcherr.NewUpstream(0, msg)
}

func textField(key string) func(gjson.Result) (string, bool) {
	return func(root gjson.Result) (string, bool) {
		v := root.Get(gjson.Escape(key))
		if !truthy(v) {
			return "", false
		}
		return v.String(), true
	}
}

func statusError(root gjson.Result) (string, bool) {
	if root.Get("status").String() != "error" && root.Get("Status").String() != "Error" {
		return "", false
	}
	for _, k := range []string{"message", "Message"} {
		if v := root.Get(k); truthy(v) {
			return v.String(), true
		}
	}
	return "API Error", true
}

func errorCode(root gjson.Result) (string, bool) {
	code := root.Get("code")
	if code.Type != gjson.Number || code.Num < 400 {
		return "", false
	}
	if v := root.Get("message"); truthy(v) {
		return v.String(), true
	}
	return fmt.Sprintf("Error Code: %s", code.Raw), true
}

// truthy はJavaScriptの真偽判定と同じ基準で値を評価します。
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}
