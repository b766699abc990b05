package config

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v2"
)

// Serializer 配置文件编解码
//
// Exts 的第一个后缀用于按默认路径查找，其余只用于识别。
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Exts() []string
	Name() string
}

// YAMLSerializer 默认格式
type YAMLSerializer struct{}

func (*YAMLSerializer) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (*YAMLSerializer) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }
func (*YAMLSerializer) Exts() []string                     { return []string{".yml", ".yaml"} }
func (*YAMLSerializer) Name() string                       { return "yaml" }

// JSONSerializer 写出时缩进两格并以换行结尾
type JSONSerializer struct{}

func (*JSONSerializer) Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (*JSONSerializer) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (*JSONSerializer) Exts() []string                     { return []string{".json"} }
func (*JSONSerializer) Name() string                       { return "json" }

// INISerializer 顶层结构体字段映射为分区，依赖 ini 标签
type INISerializer struct{}

func (*INISerializer) Marshal(v any) ([]byte, error) {
	f := ini.Empty()
	if err := f.ReflectFrom(v); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (*INISerializer) Unmarshal(data []byte, v any) error {
	f, err := ini.Load(data)
	if err != nil {
		return err
	}
	return f.MapTo(v)
}

func (*INISerializer) Exts() []string { return []string{".ini", ".conf"} }
func (*INISerializer) Name() string   { return "ini" }

// hasExt 后缀比较忽略大小写
func hasExt(s Serializer, ext string) bool {
	for _, e := range s.Exts() {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
