package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// FormatRefreshFailure formats a refresh failure alert.
func FormatRefreshFailure(ticker, start, end, source string, err error) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("❌ <b>TickerScope 刷新失败</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("标的: %s\n", html.EscapeString(ticker)))
	b.WriteString(fmt.Sprintf("区间: %s → %s\n", start, end))
	b.WriteString(fmt.Sprintf("数据源: %s\n", source))
	b.WriteString(fmt.Sprintf("错误: %s\n", html.EscapeString(err.Error())))
	return b.String()
}

// FormatRefreshRecovered formats the all-clear after a failure streak.
func FormatRefreshRecovered(ticker string, rows int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("✅ <b>TickerScope 已恢复</b> | %s\n\n", time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("标的: %s\n", html.EscapeString(ticker)))
	b.WriteString(fmt.Sprintf("行数: %d\n", rows))
	return b.String()
}
