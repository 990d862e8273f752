// Package domain はcustomapiフィーチャーのドメインモデルを定義します。
package domain

import (
	"net/url"
	"strings"
)

// HostList はリレー経由で呼び出す必要があるホストのパターン一覧です。
// パターンはホスト名と完全一致するか、そのサブドメインに一致します。
type HostList []string

// ParseHostList はカンマ区切りの文字列からHostListを作ります。
func ParseHostList(s string) HostList {
	var out HostList
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Match はrawURLのホストがいずれかのパターンに一致するかを返します。
// 解釈できないURLは一致しません。
func (l HostList) Match(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, p := range l {
		if host == p || strings.HasSuffix(host, "."+p) {
			return true
		}
	}
	return false
}
