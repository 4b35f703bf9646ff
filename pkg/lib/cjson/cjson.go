// Package cjson 提供确定性的规范化 JSON 编码
//
// 同一逻辑值无论构造顺序如何，编码结果逐字节一致：
//   - 映射键按字典序排序
//   - 无任何多余空白
//   - 字符串仅转义反斜杠和双引号，UTF-8 原样输出
//   - 仅支持整数，不支持浮点数
//
// 规范化字节同时用于两处：计算 keyid（公钥部分的摘要）和
// 生成签名/验签所覆盖的确切字节序列。
package cjson

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// maxDepth 嵌套深度上限，防止自引用结构导致无限递归
const maxDepth = 100

// Marshal 将受限的结构化值编码为规范化 JSON 字节
//
// 支持的类型：nil、bool、string、各宽度整数、键为 string 的映射、
// 切片和数组。其余类型（浮点数、结构体、通道等）返回 *SerializationError。
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any, depth int) error {
	if depth > maxDepth {
		return &SerializationError{Reason: "value nested too deeply, possible cycle"}
	}

	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case string:
		encodeString(buf, t)
		return nil
	case int:
		buf.WriteString(strconv.FormatInt(int64(t), 10))
		return nil
	case int8, int16, int32, int64:
		buf.WriteString(strconv.FormatInt(reflect.ValueOf(t).Int(), 10))
		return nil
	case uint, uint8, uint16, uint32, uint64:
		buf.WriteString(strconv.FormatUint(reflect.ValueOf(t).Uint(), 10))
		return nil
	case float32, float64:
		return &SerializationError{Reason: "floats are not canonicalizable"}
	}

	// 映射和切片走反射，以覆盖 map[string]string 等具体类型
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return encodeMap(buf, rv, depth)
	case reflect.Slice, reflect.Array:
		return encodeList(buf, rv, depth)
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			buf.WriteString("null")
			return nil
		}
		return encode(buf, rv.Elem().Interface(), depth+1)
	default:
		return &SerializationError{Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

// encodeString 输出字符串，仅转义 \ 和 "
func encodeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == '"' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(c)
	}
	buf.WriteByte('"')
}

func encodeMap(buf *bytes.Buffer, rv reflect.Value, depth int) error {
	if rv.Type().Key().Kind() != reflect.String {
		return &SerializationError{Reason: "map keys must be strings"}
	}

	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodeString(buf, k)
		buf.WriteByte(':')
		kv := reflect.ValueOf(k).Convert(rv.Type().Key())
		if err := encode(buf, rv.MapIndex(kv).Interface(), depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeList(buf *bytes.Buffer, rv reflect.Value, depth int) error {
	buf.WriteByte('[')
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(buf, rv.Index(i).Interface(), depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}
