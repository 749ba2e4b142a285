package errcode

// 主题通知中的错误码：
// - 0：发布成功
// - 40xx：编辑器可自行修复的问题，修复后重新发布即可
// - 5000：存储或数据库故障，已耗尽重试
const (
	OK = 0

	// MissingSections 主题缺少 variables/header/footer 中的至少一个分区。
	MissingSections = 4001
	// SectionVanished 合并期间某个分区被删除，重新发布即可。
	SectionVanished = 4009

	SystemError = 5000
)
