package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

// ErrNoJSON 响应中找不到 JSON 对象
var ErrNoJSON = errors.New("no json object found in response")

// ExtractJSON 从模型响应中取出第一个完整的 JSON 对象并解析到 out，
// 允许响应被 markdown 代码块或说明文字包裹。解析失败时 out 保持不变。
func ExtractJSON(text string, out any) error {
	raw, err := firstObject(text)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

// firstObject 定位第一个语法完整的 JSON 对象
func firstObject(text string) (json.RawMessage, error) {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	data := []byte(strings.TrimSpace(clean))

	for start := bytes.IndexByte(data, '{'); start >= 0; {
		var raw json.RawMessage
		dec := json.NewDecoder(bytes.NewReader(data[start:]))
		if err := dec.Decode(&raw); err == nil {
			return raw, nil
		}
		next := bytes.IndexByte(data[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, ErrNoJSON
}

// decodeInto 先解析到新值，成功后再整体赋给 out，避免失败的解析留下部分字段
func decodeInto(raw json.RawMessage, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return json.Unmarshal(raw, out)
	}
	fresh := reflect.New(rv.Type().Elem())
	if err := json.Unmarshal(raw, fresh.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}
