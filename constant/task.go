package constant

// 异步任务类型
const (
	TaskClickRecord = "click:record"
)

// 异步队列名称
const (
	QueueClicks = "clicks"
)
