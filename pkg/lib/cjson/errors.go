package cjson

// SerializationError 表示值无法被规范化编码
//
// 仅在输入包含不支持的类型（浮点数、结构体）、非字符串键
// 或疑似自引用结构时返回。
type SerializationError struct {
	// Reason 失败原因
	Reason string
}

func (e *SerializationError) Error() string {
	return "cjson: " + e.Reason
}
