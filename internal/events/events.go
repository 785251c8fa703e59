// Package events defines the narrow event-sink capability the core emits
// telemetry through, decoupling it from any particular UI or logging
// backend (the teacher codebase wires this straight to a Wails signal
// bus; here it is an injected interface per the host's choice).
package events

import "fmt"

// Sink receives the core's lifecycle and diagnostic events.
type Sink interface {
	Log(msg string)
	WorkStarted()
	WorkFinished(success bool)
	TokenUsage(promptTokens, completionTokens int)
}

// Lang selects between the two localized message catalogs the original
// implementation ships (0=English, 1=Chinese), per the config's
// "language" field.
type Lang int

const (
	English Lang = 0
	Chinese Lang = 1
)

// catalog holds one localized string per log site, indexed by Lang.
type catalog [2]string

var (
	msgServerStart       = catalog{"Server started. Port: %d, Threads: %d", "服务已启动，端口：%d，并发线程数：%d"}
	msgServerStop        = catalog{"Server stopped", "服务已停止"}
	msgRequestReceived   = catalog{"Request received: %s", "收到请求: %s"}
	msgInvalidKey        = catalog{"Error: Invalid API Key", "错误：API 密钥无效"}
	msgFormatError       = catalog{"Error: Invalid Response Format", "错误：响应格式无效"}
	msgParseError        = catalog{"Error: JSON Parse Error", "错误：JSON 解析失败"}
	msgNewTerm           = catalog{"New Term Discovered: %s = %s", "发现新术语: %s = %s"}
	msgRetryAttempt      = catalog{"Retry translation (%d/%d)", "重试翻译 (%d/%d)"}
	msgRetrySuccess      = catalog{"Retry successful", "重试成功"}
	msgRetriesExhausted  = catalog{"Retry failed, skipping text", "重试失败，跳过文本"}
	msgAborted           = catalog{"Translation Aborted", "翻译已终止"}
	msgContextsCleared   = catalog{"Context memory cleared.", "上下文记忆已清空。"}
	msgNetworkError      = catalog{"Network Error: %s", "网络错误：%s"}
	msgRequestTimeout    = catalog{"Request Timeout", "请求超时"}
	msgRequestCancelled  = catalog{"Request Cancelled", "请求已取消"}
)

func (c catalog) text(lang Lang) string {
	if lang != English && lang != Chinese {
		lang = English
	}
	return c[lang]
}

// Catalog renders the localized log-site messages for Lang. Each method
// returns the finished message; methods that take arguments interpolate
// them into the localized format string themselves.
type Catalog struct {
	Lang Lang
}

func (c Catalog) ServerStart(port, threads int) string { return sprintf(msgServerStart.text(c.Lang), port, threads) }
func (c Catalog) ServerStop() string                   { return msgServerStop.text(c.Lang) }
func (c Catalog) RequestReceived(text string) string   { return sprintf(msgRequestReceived.text(c.Lang), text) }
func (c Catalog) InvalidKey() string                   { return msgInvalidKey.text(c.Lang) }
func (c Catalog) FormatError() string                  { return msgFormatError.text(c.Lang) }
func (c Catalog) ParseError() string                   { return msgParseError.text(c.Lang) }
func (c Catalog) NewTerm(src, trgt string) string      { return sprintf(msgNewTerm.text(c.Lang), src, trgt) }
func (c Catalog) RetryAttempt(attempt, max int) string { return sprintf(msgRetryAttempt.text(c.Lang), attempt, max) }
func (c Catalog) RetrySuccess() string                 { return msgRetrySuccess.text(c.Lang) }
func (c Catalog) RetriesExhausted() string             { return msgRetriesExhausted.text(c.Lang) }
func (c Catalog) Aborted() string                      { return msgAborted.text(c.Lang) }
func (c Catalog) ContextsCleared() string              { return msgContextsCleared.text(c.Lang) }
func (c Catalog) NetworkError(detail string) string    { return sprintf(msgNetworkError.text(c.Lang), detail) }
func (c Catalog) RequestTimeout() string                { return msgRequestTimeout.text(c.Lang) }
func (c Catalog) RequestCancelled() string              { return msgRequestCancelled.text(c.Lang) }

func sprintf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
