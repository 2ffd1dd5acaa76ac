package model

// 边数组的集合语义工具：唯一成员、幂等插入、按值删除
// 删除不存在的元素是安全的空操作，而不是错误

// ContainsID 判断ID是否在集合中
func ContainsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// AddID 向集合中插入ID，已存在时不产生重复
// 返回新集合以及是否发生了插入
func AddID(ids []string, id string) ([]string, bool) {
	if ContainsID(ids, id) {
		return ids, false
	}
	return append(ids, id), true
}

// RemoveID 从集合中按值删除ID
// ID不存在时原样返回，返回值指示是否发生了删除
func RemoveID(ids []string, id string) ([]string, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...), true
		}
	}
	return ids, false
}

// CloneIDs 复制集合，用于写失败时的补偿回滚
func CloneIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
