package mysql

import (
	"encoding/json"
	"strings"
)

// 文档上的ID数组以JSON列的形式持久化
// 每个实体作为一份完整文档读写，镜像一致性由服务层负责

func marshalIDs(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

func unmarshalIDs(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = []string{}
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// placeholders 生成 IN 子句的占位符串
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idArgs(ids []string) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
